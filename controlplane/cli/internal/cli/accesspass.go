package cli

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/gagliardetto/solana-go"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/spf13/cobra"
)

type AccessPassCmd struct{}

func NewAccessPassCmd() *AccessPassCmd { return &AccessPassCmd{} }

func (c *AccessPassCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accesspass",
		Short: "Manage access passes",
	}
	cmd.AddCommand(c.listCmd(), c.setCmd(), c.closeCmd())
	return cmd
}

func (c *AccessPassCmd) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List access passes",
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
			sort.Slice(pd.AccessPasses, func(i, j int) bool {
				return pubkeyString(pd.AccessPasses[i].PubKey) < pubkeyString(pd.AccessPasses[j].PubKey)
			})
			header := []string{"ClientIP", "Payer", "Status", "Connections", "LastAccessEpoch", "PubKey"}
			rows := make([][]string, 0, len(pd.AccessPasses))
			for _, p := range pd.AccessPasses {
				rows = append(rows, []string{
					ipString(p.ClientIp), pubkeyString(p.UserPayer), p.Status.String(),
					fmt.Sprintf("%d", p.ConnectionCount), fmt.Sprintf("%d", p.LastAccessEpoch), pubkeyString(p.PubKey),
				})
			}
			return printList(f, header, rows, pd.AccessPasses)
		},
	}
}

func (c *AccessPassCmd) setCmd() *cobra.Command {
	var clientIP, payerStr string
	var passType uint8
	var lastAccessEpoch uint64
	var isDynamic, allowMultipleIP bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update an access pass (idempotent upsert)",
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

			ip, err := parseIPv4(clientIP)
			if err != nil {
				return err
			}
			payer, err := solana.PublicKeyFromBase58(payerStr)
			if err != nil {
				return fmt.Errorf("invalid payer pubkey: %w", err)
			}

			passPDA, _, err := sc.GetAccessPassPDA(client.ProgramID(), ip, payer)
			if err != nil {
				return fmt.Errorf("failed to derive access pass PDA: %w", err)
			}

			var flags uint8
			if isDynamic {
				flags |= sc.AccessPassFlagIsDynamic
			}
			if allowMultipleIP {
				flags |= sc.AccessPassFlagAllowMultipleIp
			}

			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta([32]byte(passPDA), false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpSetAccessPass, sc.SetAccessPassArgs{
				ClientIp:        ip,
				UserPayer:       [32]byte(payer),
				AccessPassType:  passType,
				LastAccessEpoch: lastAccessEpoch,
				Flags:           flags,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to set access pass: %w", err)
			}
			fmt.Println("Set access pass", passPDA.String(), "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&clientIP, "client-ip", "0.0.0.0", "client IPv4 address (0.0.0.0 for a dynamic pass)")
	cmd.Flags().StringVar(&payerStr, "payer", "", "user payer pubkey")
	cmd.Flags().Uint8Var(&passType, "type", 0, "access pass type (0=prepaid,1=solana_validator,...)")
	cmd.Flags().Uint64Var(&lastAccessEpoch, "last-access-epoch", ^uint64(0), "last epoch this pass is valid for (default: unlimited)")
	cmd.Flags().BoolVar(&isDynamic, "dynamic", false, "latch client_ip to the first user that connects")
	cmd.Flags().BoolVar(&allowMultipleIP, "allow-multiple-ip", false, "allow more than one client_ip once latched")
	_ = cmd.MarkFlagRequired("payer")
	return cmd
}

func (c *AccessPassCmd) closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <pubkey>",
		Short: "Close an access pass (requires connection_count == 0)",
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
			pass, err := findAccessPassByPubkey(pd.AccessPasses, args[0])
			if err != nil {
				return err
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(pass.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpCloseAccessPass, nil, accounts)
			if err != nil {
				return fmt.Errorf("failed to close access pass: %w", err)
			}
			fmt.Println("Closed access pass", args[0], "signature", sig.String())
			return nil
		},
	}
}
