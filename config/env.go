package config

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvTestnet     = "testnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"
)

// NetworkConfig holds the per-environment coordinates the activator and CLI
// need to reach the ledger and the serviceability program deployed on it.
type NetworkConfig struct {
	Moniker                 string
	LedgerPublicRPCURL      string
	ServiceabilityProgramID solana.PublicKey
}

func NetworkConfigForEnv(env string) (*NetworkConfig, error) {
	var config *NetworkConfig
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		serviceabilityProgramID, err := solana.PublicKeyFromBase58(MainnetServiceabilityProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse serviceability program ID: %w", err)
		}
		config = &NetworkConfig{
			Moniker:                 EnvMainnetBeta,
			LedgerPublicRPCURL:      MainnetLedgerPublicRPCURL,
			ServiceabilityProgramID: serviceabilityProgramID,
		}
	case EnvTestnet:
		serviceabilityProgramID, err := solana.PublicKeyFromBase58(TestnetServiceabilityProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse serviceability program ID: %w", err)
		}
		config = &NetworkConfig{
			Moniker:                 EnvTestnet,
			LedgerPublicRPCURL:      TestnetLedgerPublicRPCURL,
			ServiceabilityProgramID: serviceabilityProgramID,
		}
	case EnvDevnet:
		serviceabilityProgramID, err := solana.PublicKeyFromBase58(DevnetServiceabilityProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse serviceability program ID: %w", err)
		}
		config = &NetworkConfig{
			Moniker:                 EnvDevnet,
			LedgerPublicRPCURL:      DevnetLedgerPublicRPCURL,
			ServiceabilityProgramID: serviceabilityProgramID,
		}
	case EnvLocalnet:
		serviceabilityProgramID, err := solana.PublicKeyFromBase58(LocalnetServiceabilityProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse serviceability program ID: %w", err)
		}
		config = &NetworkConfig{
			Moniker:                 EnvLocalnet,
			LedgerPublicRPCURL:      LocalnetLedgerPublicRPCURL,
			ServiceabilityProgramID: serviceabilityProgramID,
		}
	default:
		// We intentionally do not include localnet in the error message.
		return nil, fmt.Errorf("invalid environment %q, must be one of: %s, %s, %s", env, EnvMainnetBeta, EnvTestnet, EnvDevnet)
	}

	ledgerRPCURL := os.Getenv("DZ_LEDGER_RPC_URL")
	if ledgerRPCURL != "" {
		config.LedgerPublicRPCURL = ledgerRPCURL
	}

	return config, nil
}
