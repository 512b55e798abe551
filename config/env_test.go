package config_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/dz-network/doublezero/config"
)

func TestConfig_NetworkConfigForEnv(t *testing.T) {
	tests := []struct {
		env     string
		want    *config.NetworkConfig
		wantErr error
	}{
		{
			env: config.EnvMainnet,
			want: &config.NetworkConfig{
				Moniker:                 config.EnvMainnetBeta,
				LedgerPublicRPCURL:      config.MainnetLedgerPublicRPCURL,
				ServiceabilityProgramID: solana.MustPublicKeyFromBase58(config.MainnetServiceabilityProgramID),
			},
		},
		{
			env: config.EnvMainnetBeta,
			want: &config.NetworkConfig{
				Moniker:                 config.EnvMainnetBeta,
				LedgerPublicRPCURL:      config.MainnetLedgerPublicRPCURL,
				ServiceabilityProgramID: solana.MustPublicKeyFromBase58(config.MainnetServiceabilityProgramID),
			},
		},
		{
			env: config.EnvTestnet,
			want: &config.NetworkConfig{
				Moniker:                 config.EnvTestnet,
				LedgerPublicRPCURL:      config.TestnetLedgerPublicRPCURL,
				ServiceabilityProgramID: solana.MustPublicKeyFromBase58(config.TestnetServiceabilityProgramID),
			},
		},
		{
			env: config.EnvDevnet,
			want: &config.NetworkConfig{
				Moniker:                 config.EnvDevnet,
				LedgerPublicRPCURL:      config.DevnetLedgerPublicRPCURL,
				ServiceabilityProgramID: solana.MustPublicKeyFromBase58(config.DevnetServiceabilityProgramID),
			},
		},
		{
			env:     "invalid",
			want:    nil,
			wantErr: fmt.Errorf("invalid environment %q, must be one of: %s, %s, %s", "invalid", config.EnvMainnetBeta, config.EnvTestnet, config.EnvDevnet),
		},
	}

	for _, test := range tests {
		t.Run(test.env, func(t *testing.T) {
			got, err := config.NetworkConfigForEnv(test.env)
			if test.wantErr != nil {
				require.Equal(t, test.wantErr.Error(), err.Error())
				return
			}
			require.Equal(t, test.want, got)
		})
	}
}

func TestConfig_NetworkConfigForEnv_RPCURLOverrideFromEnvVars(t *testing.T) {
	os.Setenv("DZ_LEDGER_RPC_URL", "https://other-rpc-url.com")
	defer os.Unsetenv("DZ_LEDGER_RPC_URL")
	got, err := config.NetworkConfigForEnv(config.EnvMainnet)
	require.NoError(t, err)
	require.Equal(t, "https://other-rpc-url.com", got.LedgerPublicRPCURL)
}
