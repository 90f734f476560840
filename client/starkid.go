package client

import (
	"context"
	"math/big"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	snGoUtils "github.com/NethermindEth/starknet.go/utils"
	"github.com/cockroachdb/errors"

	"github.com/YohanTz/starknet-query/query"
	"github.com/YohanTz/starknet-query/types"
)

const domainSuffix = ".stark"

const domainAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789-"

var domainBase = big.NewInt(int64(len(domainAlphabet) + 1))

// encodeDomainSegment turns one dot-separated segment of a stark domain into
// its felt encoding. A trailing 'a' gets the escape slot so that "a" and ""
// stay distinguishable.
func encodeDomainSegment(segment string) (*felt.Felt, error) {
	encoded := new(big.Int)
	multiplier := big.NewInt(1)

	for i, ch := range segment {
		index := strings.IndexRune(domainAlphabet, ch)
		if index < 0 {
			return nil, query.MissingInputf("character %q not allowed in stark domain %q", ch, segment)
		}

		if i == len(segment)-1 && ch == rune(domainAlphabet[0]) {
			encoded.Add(encoded, new(big.Int).Mul(multiplier, big.NewInt(int64(len(domainAlphabet)))))
			multiplier.Mul(multiplier, domainBase)
			multiplier.Mul(multiplier, domainBase)
		} else {
			encoded.Add(encoded, new(big.Int).Mul(multiplier, big.NewInt(int64(index))))
			multiplier.Mul(multiplier, domainBase)
		}
	}

	return new(felt.Felt).SetBigInt(encoded), nil
}

func decodeDomainSegment(encoded *felt.Felt) string {
	var sb strings.Builder
	v := encoded.BigInt(new(big.Int))
	code := new(big.Int)

	for v.Sign() != 0 {
		v.DivMod(v, domainBase, code)
		if code.Int64() == int64(len(domainAlphabet)) {
			sb.WriteByte(domainAlphabet[0])

			continue
		}
		sb.WriteByte(domainAlphabet[code.Int64()])
	}

	return sb.String()
}

// EncodeDomain encodes a full stark domain into its felt segments. The
// ".stark" suffix is optional.
func EncodeDomain(domain string) ([]*felt.Felt, error) {
	trimmed := strings.TrimSuffix(strings.ToLower(domain), domainSuffix)
	if trimmed == "" {
		return nil, query.MissingInputf("empty stark domain")
	}

	segments := strings.Split(trimmed, ".")
	encoded := make([]*felt.Felt, len(segments))
	for i, segment := range segments {
		f, err := encodeDomainSegment(segment)
		if err != nil {
			return nil, err
		}
		encoded[i] = f
	}

	return encoded, nil
}

// DecodeDomain is the inverse of EncodeDomain, returning the full domain with
// its ".stark" suffix.
func DecodeDomain(encoded []*felt.Felt) string {
	if len(encoded) == 0 {
		return ""
	}

	segments := make([]string, len(encoded))
	for i, f := range encoded {
		segments[i] = decodeDomainSegment(f)
	}

	return strings.Join(segments, ".") + domainSuffix
}

// StarkAddress returns a query resolving a stark domain to its address via
// the naming contract. An unregistered domain is a terminal not-found error.
func (c *Client) StarkAddress(domain string, opts query.Options) (*query.Query, error) {
	encoded, err := EncodeDomain(domain)
	if err != nil {
		return nil, err
	}

	key, err := query.NewKey("starkAddress", c.chainID, "", domain)
	if err != nil {
		return nil, err
	}

	return c.cache.Bind(key, func(ctx context.Context) (any, error) {
		calldata := make([]*felt.Felt, 0, len(encoded)+2)
		calldata = append(calldata, new(felt.Felt).SetUint64(uint64(len(encoded))))
		calldata = append(calldata, encoded...)
		calldata = append(calldata, &felt.Zero)

		result, err := c.reader.Call(ctx, rpc.FunctionCall{
			ContractAddress:    c.naming.Felt(),
			EntryPointSelector: snGoUtils.GetSelectorFromNameFelt("domain_to_address"),
			Calldata:           calldata,
		}, rpc.BlockID{Tag: rpc.BlockTagLatest})
		if err != nil {
			return nil, query.MarkNetwork(err)
		}
		if len(result) == 0 || result[0].IsZero() {
			return nil, query.Unresolvedf("domain %q is not registered", domain)
		}

		return types.Address(*result[0]), nil
	}, opts), nil
}

// StarkName returns a query resolving an address to its stark domain. An
// address with no domain resolves to the empty string.
func (c *Client) StarkName(address types.Address, opts query.Options) (*query.Query, error) {
	if address.IsZero() {
		return nil, query.MissingInputf("stark name lookup needs an address")
	}

	key, err := query.NewKey("starkName", c.chainID, address.String(), nil)
	if err != nil {
		return nil, err
	}

	return c.cache.Bind(key, func(ctx context.Context) (any, error) {
		result, err := c.reader.Call(ctx, rpc.FunctionCall{
			ContractAddress:    c.naming.Felt(),
			EntryPointSelector: snGoUtils.GetSelectorFromNameFelt("address_to_domain"),
			Calldata:           []*felt.Felt{address.Felt(), &felt.Zero},
		}, rpc.BlockID{Tag: rpc.BlockTagLatest})
		if err != nil {
			return nil, query.MarkNetwork(err)
		}
		if len(result) < 1 {
			return nil, query.MarkNetwork(errors.New("empty address_to_domain response"))
		}

		count := int(result[0].Uint64())
		if count == 0 || len(result) < 1+count {
			return "", nil
		}

		return DecodeDomain(result[1 : 1+count]), nil
	}, opts), nil
}
