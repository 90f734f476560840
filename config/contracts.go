package config

import (
	"github.com/cockroachdb/errors"

	"github.com/YohanTz/starknet-query/types"
)

const (
	SepoliaStrkAddress   = "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"
	MainnetStrkAddress   = "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"
	SepoliaEthAddress    = "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"
	MainnetEthAddress    = "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"
	SepoliaNamingAddress = "0x0707f09bc576bd7cfee59694846291047e965f4184fe13dac62c56759b3b6fa7"
	MainnetNamingAddress = "0x6ac597f8116f886fa1c97a23fa4e08299975ecaf6b598873ca6792b9bbfb678"
)

// ContractAddresses are the well-known contracts derived queries talk to.
// Any field left empty is filled with the chain's canonical deployment.
type ContractAddresses struct {
	Strk   string `json:"strk"`
	Eth    string `json:"eth"`
	Naming string `json:"naming"`
}

func ContractAddressesFromEnv() ContractAddresses {
	return ContractAddresses{
		Strk:   envOr("STRK_CONTRACT_ADDRESS", ""),
		Eth:    envOr("ETH_CONTRACT_ADDRESS", ""),
		Naming: envOr("NAMING_CONTRACT_ADDRESS", ""),
	}
}

func (c *ContractAddresses) Fill(other *ContractAddresses) {
	if isZero(c.Strk) {
		c.Strk = other.Strk
	}
	if isZero(c.Eth) {
		c.Eth = other.Eth
	}
	if isZero(c.Naming) {
		c.Naming = other.Naming
	}
}

// SetDefaults fills empty addresses with the canonical deployments of the
// given chain id.
func (c *ContractAddresses) SetDefaults(chainID string) {
	if chainID == "SN_MAIN" {
		c.Fill(&ContractAddresses{
			Strk:   MainnetStrkAddress,
			Eth:    MainnetEthAddress,
			Naming: MainnetNamingAddress,
		})
	} else {
		c.Fill(&ContractAddresses{
			Strk:   SepoliaStrkAddress,
			Eth:    SepoliaEthAddress,
			Naming: SepoliaNamingAddress,
		})
	}
}

func (c *ContractAddresses) Check() error {
	if _, err := types.AddressFromString(c.Strk); err != nil {
		return errors.Errorf("invalid strk contract address: %s", c.Strk)
	}
	if _, err := types.AddressFromString(c.Eth); err != nil {
		return errors.Errorf("invalid eth contract address: %s", c.Eth)
	}
	if _, err := types.AddressFromString(c.Naming); err != nil {
		return errors.Errorf("invalid naming contract address: %s", c.Naming)
	}

	return nil
}

// Parsed returns the addresses as felt-backed types. Call Check first.
func (c *ContractAddresses) Parsed() (strk, eth, naming types.Address) {
	strk = types.MustAddressFromString(c.Strk)
	eth = types.MustAddressFromString(c.Eth)
	naming = types.MustAddressFromString(c.Naming)

	return strk, eth, naming
}
