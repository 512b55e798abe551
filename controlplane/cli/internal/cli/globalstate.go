package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/spf13/cobra"
)

type GlobalStateCmd struct{}

func NewGlobalStateCmd() *GlobalStateCmd { return &GlobalStateCmd{} }

func (c *GlobalStateCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "globalstate",
		Short: "Manage the singleton global state account",
	}

	allowlistCmd := &cobra.Command{Use: "allowlist", Short: "Mutate the foundation or qa allowlist"}
	foundationCmd := &cobra.Command{Use: "foundation", Short: "Manage the foundation allowlist"}
	foundationCmd.AddCommand(
		c.allowlistMutationCmd("add", sc.OpAddFoundationAllowlistGlobalState, "Add a pubkey to the foundation allowlist"),
		c.allowlistMutationCmd("remove", sc.OpRemoveFoundationAllowlistGlobalState, "Remove a pubkey from the foundation allowlist"),
	)
	qaCmd := &cobra.Command{Use: "qa", Short: "Manage the qa allowlist"}
	qaCmd.AddCommand(
		c.allowlistMutationCmd("add", sc.OpAddQAAllowlistGlobalState, "Add a pubkey to the qa allowlist"),
		c.allowlistMutationCmd("remove", sc.OpRemoveQAAllowlistGlobalState, "Remove a pubkey from the qa allowlist"),
	)
	allowlistCmd.AddCommand(foundationCmd, qaCmd)

	cmd.AddCommand(c.getCmd(), c.initCmd(), c.setAuthorityCmd(), c.setAirdropCmd(), allowlistCmd)
	return cmd
}

func (c *GlobalStateCmd) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the global state account",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readRootFlags(cmd)
			if err != nil {
				return err
			}
			client, err := newReadClient(f)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			pd, err := client.GetProgramData(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch program data: %w", err)
			}
			if pd.GlobalState == nil {
				return fmt.Errorf("global state account not found")
			}
			gs := pd.GlobalState
			header := []string{"Field", "Value"}
			rows := [][]string{
				{"ActivatorAuthority", pubkeyString(gs.ActivatorAuthorityPK)},
				{"SentinelAuthority", pubkeyString(gs.SentinelAuthorityPK)},
				{"HealthOracle", pubkeyString(gs.HealthOraclePK)},
				{"ContributorAirdropLamports", fmt.Sprintf("%d", gs.ContributorAirdropLamports)},
				{"UserAirdropLamports", fmt.Sprintf("%d", gs.UserAirdropLamports)},
				{"FoundationAllowlist", fmt.Sprintf("%d entries", len(gs.FoundationAllowlist))},
				{"QAAllowlist", fmt.Sprintf("%d entries", len(gs.QAAllowlist))},
				{"PubKey", pubkeyString(gs.PubKey)},
			}
			return printList(f, header, rows, gs)
		},
	}
}

func (c *GlobalStateCmd) initCmd() *cobra.Command {
	var activatorAuthority, sentinelAuthority string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the global state account (one-time setup)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readRootFlags(cmd)
			if err != nil {
				return err
			}
			client, executor, err := newWriteClient(f)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			activator, err := solana.PublicKeyFromBase58(activatorAuthority)
			if err != nil {
				return fmt.Errorf("invalid activator authority pubkey: %w", err)
			}
			sentinel, err := solana.PublicKeyFromBase58(sentinelAuthority)
			if err != nil {
				return fmt.Errorf("invalid sentinel authority pubkey: %w", err)
			}

			statePDA, _, err := sc.DeriveGlobalStatePDA(client.ProgramID())
			if err != nil {
				return fmt.Errorf("failed to derive global state PDA: %w", err)
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta([32]byte(statePDA), false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpInitGlobalState, sc.InitGlobalStateArgs{
				ActivatorAuthorityPK: activator,
				SentinelAuthorityPK:  sentinel,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to init global state: %w", err)
			}
			fmt.Println("Initialized global state", statePDA.String(), "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&activatorAuthority, "activator-authority", "", "activator authority pubkey")
	cmd.Flags().StringVar(&sentinelAuthority, "sentinel-authority", "", "sentinel authority pubkey")
	_ = cmd.MarkFlagRequired("activator-authority")
	_ = cmd.MarkFlagRequired("sentinel-authority")
	return cmd
}

func (c *GlobalStateCmd) setAuthorityCmd() *cobra.Command {
	var activatorAuthority, sentinelAuthority, healthOracle string
	cmd := &cobra.Command{
		Use:   "set-authority",
		Short: "Rotate the activator/sentinel/health-oracle authorities",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readRootFlags(cmd)
			if err != nil {
				return err
			}
			client, executor, err := newWriteClient(f)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			pd, err := client.GetProgramData(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch program data: %w", err)
			}
			if pd.GlobalState == nil {
				return fmt.Errorf("global state account not found")
			}

			activator, err := solana.PublicKeyFromBase58(activatorAuthority)
			if err != nil {
				return fmt.Errorf("invalid activator authority pubkey: %w", err)
			}
			sentinel, err := solana.PublicKeyFromBase58(sentinelAuthority)
			if err != nil {
				return fmt.Errorf("invalid sentinel authority pubkey: %w", err)
			}
			oracle, err := solana.PublicKeyFromBase58(healthOracle)
			if err != nil {
				return fmt.Errorf("invalid health oracle pubkey: %w", err)
			}

			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(pd.GlobalState.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpSetActivatorAuthorityGlobalState, sc.SetActivatorAuthorityArgs{
				ActivatorAuthorityPK: activator,
				SentinelAuthorityPK:  sentinel,
				HealthOraclePK:       oracle,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to set authorities: %w", err)
			}
			fmt.Println("Updated global state authorities, signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&activatorAuthority, "activator-authority", "", "new activator authority pubkey")
	cmd.Flags().StringVar(&sentinelAuthority, "sentinel-authority", "", "new sentinel authority pubkey")
	cmd.Flags().StringVar(&healthOracle, "health-oracle", "", "new health oracle pubkey")
	_ = cmd.MarkFlagRequired("activator-authority")
	_ = cmd.MarkFlagRequired("sentinel-authority")
	_ = cmd.MarkFlagRequired("health-oracle")
	return cmd
}

func (c *GlobalStateCmd) setAirdropCmd() *cobra.Command {
	var contributorLamports, userLamports uint64
	cmd := &cobra.Command{
		Use:   "set-airdrop",
		Short: "Set the SOL airdrop amounts handed to new contributors and users",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readRootFlags(cmd)
			if err != nil {
				return err
			}
			client, executor, err := newWriteClient(f)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			pd, err := client.GetProgramData(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch program data: %w", err)
			}
			if pd.GlobalState == nil {
				return fmt.Errorf("global state account not found")
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(pd.GlobalState.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpSetAirdropGlobalState, sc.SetAirdropArgs{
				ContributorAirdropLamports: contributorLamports,
				UserAirdropLamports:        userLamports,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to set airdrop amounts: %w", err)
			}
			fmt.Println("Updated airdrop amounts, signature", sig.String())
			return nil
		},
	}
	cmd.Flags().Uint64Var(&contributorLamports, "contributor-lamports", 0, "lamports airdropped to a newly created contributor")
	cmd.Flags().Uint64Var(&userLamports, "user-lamports", 0, "lamports airdropped to a newly created user")
	_ = cmd.MarkFlagRequired("contributor-lamports")
	_ = cmd.MarkFlagRequired("user-lamports")
	return cmd
}

func (c *GlobalStateCmd) allowlistMutationCmd(use string, op sc.Opcode, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <pubkey>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readRootFlags(cmd)
			if err != nil {
				return err
			}
			client, executor, err := newWriteClient(f)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			pd, err := client.GetProgramData(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch program data: %w", err)
			}
			if pd.GlobalState == nil {
				return fmt.Errorf("global state account not found")
			}
			pubkey, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid pubkey: %w", err)
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(pd.GlobalState.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, op, sc.AllowlistMutationArgs{
				Pubkey: pubkey,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to mutate allowlist: %w", err)
			}
			fmt.Println(use, args[0], "signature", sig.String())
			return nil
		},
	}
	return cmd
}
