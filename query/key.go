package query

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
)

// Key is the deterministic fingerprint of a request. Two reads with the same
// entity, chain, account and parameters always produce an equal Key, which is
// what makes deduplication and cache hits possible. Parameters are fingerprinted
// through their canonical JSON encoding: object field order is irrelevant
// (encoding/json sorts map keys), slice order is significant.
type Key struct {
	Entity  string
	Chain   string
	Account string
	params  string
}

func NewKey(entity, chain, account string, params any) (Key, error) {
	if entity == "" {
		return Key{}, MissingInputf("cache key needs a non-empty entity tag")
	}

	var paramsHash string
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return Key{}, fmt.Errorf("cannot fingerprint parameters for %q: %w", entity, err)
		}
		paramsHash = fmt.Sprintf("%x", md5.Sum(encoded))
	}

	return Key{
		Entity:  entity,
		Chain:   chain,
		Account: account,
		params:  paramsHash,
	}, nil
}

func (k Key) String() string {
	return k.Entity + ":" + k.Chain + ":" + k.Account + ":" + k.params
}

// HasAccount reports whether the key is scoped to the given account
// identifier. Used for invalidation on connector switches.
func (k Key) HasAccount(account string) bool {
	return account != "" && k.Account == account
}
