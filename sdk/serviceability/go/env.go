package serviceability

import "github.com/dz-network/doublezero/config"

// LedgerRPCURLs maps a network moniker to its public ledger RPC endpoint.
var LedgerRPCURLs = map[string]string{
	config.EnvMainnetBeta: config.MainnetLedgerPublicRPCURL,
	config.EnvTestnet:     config.TestnetLedgerPublicRPCURL,
	config.EnvDevnet:      config.DevnetLedgerPublicRPCURL,
	config.EnvLocalnet:    config.LocalnetLedgerPublicRPCURL,
}

// ProgramIDs maps a network moniker to the base58-encoded serviceability program ID.
var ProgramIDs = map[string]string{
	config.EnvMainnetBeta: config.MainnetServiceabilityProgramID,
	config.EnvTestnet:     config.TestnetServiceabilityProgramID,
	config.EnvDevnet:      config.DevnetServiceabilityProgramID,
	config.EnvLocalnet:    config.LocalnetServiceabilityProgramID,
}
