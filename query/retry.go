package query

import "time"

// Function variables for mocking purposes in tests
var (
	Sleep = time.Sleep
	Now   = time.Now
)

// RetryPolicy drives the exponential backoff applied to retryable fetch
// failures: delays of BaseDelay, 2x, 4x... capped at MaxDelay, for at most
// MaxAttempts total attempts.
type RetryPolicy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
	}
}

// Delay returns the backoff before the given retry. attempt is 1-based: the
// delay before the first retry is BaseDelay.
func (p *RetryPolicy) Delay(attempt uint) time.Duration {
	delay := p.BaseDelay
	for i := uint(1); i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}

	return delay
}
