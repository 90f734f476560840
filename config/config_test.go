package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YohanTz/starknet-query/config"
)

func TestConfigFill(t *testing.T) {
	t.Run("Only missing fields are filled", func(t *testing.T) {
		cfg := config.Config{
			Provider: config.Provider{HTTP: "http://flag:6060"},
		}
		other := config.Config{
			Provider: config.Provider{HTTP: "http://env:6060", WS: "ws://env:6061"},
			Account:  config.Account{Address: "0x123", PrivKey: "0x456"},
		}

		cfg.Fill(&other)

		require.Equal(t, "http://flag:6060", cfg.Provider.HTTP)
		require.Equal(t, "ws://env:6061", cfg.Provider.WS)
		require.Equal(t, "0x123", cfg.Account.Address)
		require.Equal(t, "0x456", cfg.Account.PrivKey)
	})

	t.Run("Filling from an empty config changes nothing", func(t *testing.T) {
		cfg := config.Config{
			Provider: config.Provider{HTTP: "http://flag:6060", WS: "ws://flag:6061"},
			Account:  config.Account{Address: "0x123"},
		}
		before := cfg

		cfg.Fill(&config.Config{})
		require.Equal(t, before, cfg)
	})
}

func TestConfigCheck(t *testing.T) {
	t.Run("An http provider url is required", func(t *testing.T) {
		cfg := config.Config{}
		require.Error(t, cfg.Check())

		cfg.Provider.HTTP = "http://localhost:6060"
		require.NoError(t, cfg.Check())
	})
}

func TestAccount(t *testing.T) {
	t.Run("A local account needs an address and a private key", func(t *testing.T) {
		account := config.Account{Address: "0x123"}
		require.Error(t, account.Check())

		account.PrivKey = "0x456"
		require.NoError(t, account.Check())
	})

	t.Run("An external signer replaces the private key", func(t *testing.T) {
		account := config.Account{Address: "0x123", SignerURL: "http://signer:8080"}
		require.NoError(t, account.Check())
		require.True(t, account.External())
	})

	t.Run("An address alone marks the account configured", func(t *testing.T) {
		require.False(t, (&config.Account{}).Configured())
		require.True(t, (&config.Account{Address: "0x123"}).Configured())
	})
}

func TestFromFile(t *testing.T) {
	t.Run("Parses a full JSON config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		data := `{
			"provider": {"http": "http://localhost:6060", "ws": "ws://localhost:6061"},
			"account": {"address": "0x123", "privateKey": "0x456"}
		}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		cfg, err := config.FromFile(path)
		require.NoError(t, err)
		require.Equal(t, "http://localhost:6060", cfg.Provider.HTTP)
		require.Equal(t, "ws://localhost:6061", cfg.Provider.WS)
		require.Equal(t, "0x123", cfg.Account.Address)
		require.Equal(t, "0x456", cfg.Account.PrivKey)
	})

	t.Run("A missing file is an error", func(t *testing.T) {
		_, err := config.FromFile(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})

	t.Run("Malformed JSON is an error", func(t *testing.T) {
		_, err := config.FromData([]byte(`{"provider": `))
		require.Error(t, err)
	})
}

func TestContractAddresses(t *testing.T) {
	t.Run("Defaults are chain dependent", func(t *testing.T) {
		var sepolia config.ContractAddresses
		sepolia.SetDefaults("SN_SEPOLIA")
		require.Equal(t, config.SepoliaNamingAddress, sepolia.Naming)

		var mainnet config.ContractAddresses
		mainnet.SetDefaults("SN_MAIN")
		require.Equal(t, config.MainnetNamingAddress, mainnet.Naming)

		require.NotEqual(t, sepolia.Naming, mainnet.Naming)
	})

	t.Run("Explicit addresses are kept over defaults", func(t *testing.T) {
		contracts := config.ContractAddresses{Strk: "0xcafe"}
		contracts.SetDefaults("SN_SEPOLIA")
		require.Equal(t, "0xcafe", contracts.Strk)
		require.Equal(t, config.SepoliaEthAddress, contracts.Eth)
	})

	t.Run("Check rejects non-felt addresses", func(t *testing.T) {
		contracts := config.ContractAddresses{Strk: "not a felt"}
		contracts.SetDefaults("SN_SEPOLIA")
		require.Error(t, contracts.Check())

		var valid config.ContractAddresses
		valid.SetDefaults("SN_SEPOLIA")
		require.NoError(t, valid.Check())
	})
}
