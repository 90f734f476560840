package types

import (
	"math/big"

	"github.com/NethermindEth/juno/core/felt"
	"lukechampine.com/uint128"
)

// Token balance represented in the token's smallest unit. Starknet ERC20
// contracts return balances as a u256 split into two felts.
type Balance big.Int

func NewBalance(low, high *felt.Felt) Balance {
	lowB := low.BigInt(new(big.Int))
	highB := high.BigInt(new(big.Int))

	highB = highB.Lsh(highB, 128)
	lowB = lowB.Add(lowB, highB)

	return Balance(*lowB)
}

func (b *Balance) Int() *big.Int {
	return (*big.Int)(b)
}

func (b *Balance) Text(base int) string {
	return (*big.Int)(b).Text(base)
}

func (b *Balance) BigFloat() *big.Float {
	return new(big.Float).SetInt((*big.Int)(b))
}

// Low128 returns the low 128 bits of the balance. The second return is false
// when the balance does not fit, which for real token supplies never happens.
func (b *Balance) Low128() (uint128.Uint128, bool) {
	i := (*big.Int)(b)
	if i.BitLen() > 128 {
		return uint128.Uint128{}, false
	}

	return uint128.FromBig(i), true
}

// Returns the balance in whole-token units as a float64, given the token's
// decimals. If it doesn't fit +Inf is returned.
func (b *Balance) Tokens(decimals uint8) float64 {
	unit := new(big.Float).SetInt(new(big.Int).Exp(
		big.NewInt(10), big.NewInt(int64(decimals)), nil,
	))
	bigF := b.BigFloat()
	bigF = bigF.Quo(bigF, unit)

	f, _ := bigF.Float64()

	return f
}
