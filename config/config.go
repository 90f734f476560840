package config

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

type Provider struct {
	HTTP string `json:"http"`
	WS   string `json:"ws"`
}

func ProviderFromEnv() Provider {
	return Provider{
		HTTP: os.Getenv("PROVIDER_HTTP_URL"),
		WS:   os.Getenv("PROVIDER_WS_URL"),
	}
}

func (p *Provider) Check() error {
	if p.HTTP == "" {
		return errors.New("http provider url not set in provider configuration")
	}

	return nil
}

// Merge its missing fields with data from other provider
func (p *Provider) Fill(other *Provider) {
	if isZero(p.HTTP) {
		p.HTTP = other.HTTP
	}
	if isZero(p.WS) {
		p.WS = other.WS
	}
}

// Account configures the signing identity. Either a local private key or an
// external signing service URL; the address is always required for
// write-style commands.
type Account struct {
	Address   string `json:"address"`
	PrivKey   string `json:"privateKey"`
	SignerURL string `json:"signerUrl"`
}

func AccountFromEnv() Account {
	return Account{
		Address:   os.Getenv("ACCOUNT_ADDRESS"),
		PrivKey:   os.Getenv("ACCOUNT_PRIVATE_KEY"),
		SignerURL: os.Getenv("ACCOUNT_SIGNER_URL"),
	}
}

// Check validates the account for write usage. Read-only usage does not need
// an account at all, callers gate on Configured first.
func (a *Account) Check() error {
	if a.Address == "" {
		return errors.New("account address is not set in account configuration")
	}
	if a.External() {
		return nil
	}
	if a.PrivKey == "" {
		return errors.New("neither private key nor signer url set in account configuration")
	}

	return nil
}

func (a *Account) Fill(other *Account) {
	if isZero(a.Address) {
		a.Address = other.Address
	}
	if isZero(a.PrivKey) {
		a.PrivKey = other.PrivKey
	}
	if isZero(a.SignerURL) {
		a.SignerURL = other.SignerURL
	}
}

func (a *Account) External() bool {
	return a.SignerURL != ""
}

func (a *Account) Configured() bool {
	return a.Address != ""
}

type Config struct {
	Provider Provider `json:"provider"`
	Account  Account  `json:"account"`
}

func FromEnv() Config {
	return Config{
		Provider: ProviderFromEnv(),
		Account:  AccountFromEnv(),
	}
}

// Function to load and parse the JSON file
func FromFile(filePath string) (Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}

	return FromData(data)
}

func FromData(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Fills its missing fields with data from other config
func (c *Config) Fill(other *Config) {
	c.Provider.Fill(&other.Provider)
	c.Account.Fill(&other.Account)
}

// Verifies its data is appropriately set
func (c *Config) Check() error {
	return c.Provider.Check()
}

// LoadDotEnv loads a .env file when present so that FromEnv picks its values
// up. A missing file is not an error.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func isZero[T comparable](v T) bool {
	var x T

	return v == x
}
