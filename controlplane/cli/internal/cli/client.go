package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/dz-network/doublezero/config"
	serviceability "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/spf13/cobra"
)

// rootFlags holds the persistent flags every subcommand reads, fetched
// once via cmd.Root().PersistentFlags() the way device.go does it.
type rootFlags struct {
	verbose     bool
	env         string
	keypairPath string
	jsonPretty  bool
	jsonCompact bool
}

func readRootFlags(cmd *cobra.Command) (rootFlags, error) {
	flags := cmd.Root().PersistentFlags()

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return rootFlags{}, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	env, err := flags.GetString("env")
	if err != nil {
		return rootFlags{}, fmt.Errorf("failed to get env flag: %w", err)
	}
	keypairPath, err := flags.GetString("keypair")
	if err != nil {
		return rootFlags{}, fmt.Errorf("failed to get keypair flag: %w", err)
	}
	jsonPretty, err := flags.GetBool("json")
	if err != nil {
		return rootFlags{}, fmt.Errorf("failed to get json flag: %w", err)
	}
	jsonCompact, err := flags.GetBool("json-compact")
	if err != nil {
		return rootFlags{}, fmt.Errorf("failed to get json-compact flag: %w", err)
	}

	return rootFlags{
		verbose:     verbose,
		env:         env,
		keypairPath: keypairPath,
		jsonPretty:  jsonPretty,
		jsonCompact: jsonCompact,
	}, nil
}

// newReadClient builds a read-only serviceability client for the targeted
// environment. Used by every list/get subcommand.
func newReadClient(f rootFlags) (*serviceability.Client, error) {
	networkConfig, err := config.NetworkConfigForEnv(f.env)
	if err != nil {
		return nil, fmt.Errorf("failed to get network config: %w", err)
	}
	rpcClient := solanarpc.New(networkConfig.LedgerPublicRPCURL)
	return serviceability.New(rpcClient, networkConfig.ServiceabilityProgramID), nil
}

// newWriteClient builds a read client plus an Executor signed by the
// keypair at f.keypairPath. Used by every create/update/delete subcommand.
func newWriteClient(f rootFlags) (*serviceability.Client, *serviceability.Executor, error) {
	networkConfig, err := config.NetworkConfigForEnv(f.env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get network config: %w", err)
	}
	rpcClient := solanarpc.New(networkConfig.LedgerPublicRPCURL)

	payer, err := solana.PrivateKeyFromSolanaKeygenFile(f.keypairPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load keypair from %s: %w", f.keypairPath, err)
	}

	client := serviceability.New(rpcClient, networkConfig.ServiceabilityProgramID)
	executor := serviceability.NewExecutor(rpcClient, networkConfig.ServiceabilityProgramID, payer)
	return client, executor, nil
}

func pubkeyFromBytes(pk [32]byte) solana.PublicKey {
	return solana.PublicKey(pk)
}

func accountMeta(pubkey [32]byte, isSigner, isWritable bool) serviceability.AccountMeta {
	return serviceability.AccountMeta{
		PublicKey:  solana.PublicKey(pubkey),
		IsSigner:   isSigner,
		IsWritable: isWritable,
	}
}
