package types

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
)

type Address felt.Felt

func (a *Address) Felt() *felt.Felt {
	return (*felt.Felt)(a)
}

func AddressFromString(addrStr string) (Address, error) {
	adr, err := new(felt.Felt).SetString(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("cannot turn string `%s` into an address: %w", addrStr, err)
	}

	return Address(*adr), nil
}

// MustAddressFromString is AddressFromString for hardcoded addresses where a
// parse failure is a programming error.
func MustAddressFromString(addrStr string) Address {
	adr, err := AddressFromString(addrStr)
	if err != nil {
		panic(err)
	}

	return adr
}

// Convert the address to a string with the "0x" prefix and the length of 66.
func (a *Address) String() string {
	const length = 66
	hexStr := (*felt.Felt)(a).String()

	if len(hexStr) >= length {
		return hexStr
	}

	// Pad zeros between the "0x" prefix and the hex value
	return "0x" + fmt.Sprintf("%0*s", length-2, hexStr[2:])
}

func (a *Address) IsZero() bool {
	return (*felt.Felt)(a).IsZero()
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var f felt.Felt
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Address(f)

	return nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	return (*felt.Felt)(&a).MarshalJSON()
}

type BlockHash felt.Felt

func (b *BlockHash) Felt() *felt.Felt {
	return (*felt.Felt)(b)
}

func (b *BlockHash) String() string {
	return (*felt.Felt)(b).String()
}

type BlockNumber uint64

func (b BlockNumber) Uint64() uint64 {
	return uint64(b)
}

type TransactionHash felt.Felt

func (t *TransactionHash) Felt() *felt.Felt {
	return (*felt.Felt)(t)
}

func (t *TransactionHash) String() string {
	return (*felt.Felt)(t).String()
}

func TransactionHashFromString(hashStr string) (TransactionHash, error) {
	h, err := new(felt.Felt).SetString(hashStr)
	if err != nil {
		return TransactionHash{}, fmt.Errorf(
			"cannot turn string `%s` into a transaction hash: %w", hashStr, err,
		)
	}

	return TransactionHash(*h), nil
}
