package types

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// Retries is a retry budget which is either a positive count or infinite.
type Retries struct {
	count    uint64
	infinite bool
}

func NewRetries(count uint64) Retries {
	return Retries{count: count}
}

func InfiniteRetries() Retries {
	return Retries{infinite: true}
}

func RetriesFromString(s string) (Retries, error) {
	if s == "infinite" {
		return InfiniteRetries(), nil
	}

	count, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Retries{}, errors.Errorf(
			"retry amount must be a positive integer or the keyword 'infinite', got %q", s,
		)
	}

	return NewRetries(count), nil
}

func (r *Retries) IsZero() bool {
	return !r.infinite && r.count == 0
}

func (r *Retries) Sub() {
	if !r.infinite && r.count > 0 {
		r.count--
	}
}

func (r *Retries) String() string {
	if r.infinite {
		return "infinite"
	}

	return strconv.FormatUint(r.count, 10)
}
