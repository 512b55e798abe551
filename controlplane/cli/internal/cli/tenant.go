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

type TenantCmd struct{}

func NewTenantCmd() *TenantCmd { return &TenantCmd{} }

func (c *TenantCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	cmd.AddCommand(
		c.listCmd(), c.getCmd(), c.createCmd(), c.updateCmd(),
		c.addAdministratorCmd(), c.removeAdministratorCmd(),
		c.updatePaymentStatusCmd(), c.deleteCmd(),
	)
	return cmd
}

func (c *TenantCmd) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tenants",
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
			sort.Slice(pd.Tenants, func(i, j int) bool { return pd.Tenants[i].Code < pd.Tenants[j].Code })
			header := []string{"Code", "VrfID", "RefCount", "PaymentStatus", "PubKey"}
			rows := make([][]string, 0, len(pd.Tenants))
			for _, t := range pd.Tenants {
				rows = append(rows, []string{
					t.Code, fmt.Sprintf("%d", t.VrfId), fmt.Sprintf("%d", t.ReferenceCount),
					t.PaymentStatus.String(), pubkeyString(t.PubKey),
				})
			}
			return printList(f, header, rows, pd.Tenants)
		},
	}
}

func (c *TenantCmd) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get a single tenant by code",
		Args:  cobra.ExactArgs(1),
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
			t, err := findTenantByCode(pd.Tenants, args[0])
			if err != nil {
				return err
			}
			header := []string{"Field", "Value"}
			rows := [][]string{
				{"Code", t.Code},
				{"VrfID", fmt.Sprintf("%d", t.VrfId)},
				{"ReferenceCount", fmt.Sprintf("%d", t.ReferenceCount)},
				{"Administrators", fmt.Sprintf("%d", len(t.Administrators))},
				{"PaymentStatus", t.PaymentStatus.String()},
				{"MetroRouting", fmt.Sprintf("%v", t.MetroRouting)},
				{"RouteLiveness", fmt.Sprintf("%v", t.RouteLiveness)},
				{"PubKey", pubkeyString(t.PubKey)},
			}
			return printList(f, header, rows, t)
		},
	}
}

func (c *TenantCmd) createCmd() *cobra.Command {
	var code string
	var metroRouting bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant, allocating a VRF ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readRootFlags(cmd)
			if err != nil {
				return err
			}
			_, executor, err := newWriteClient(f)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
			}
			_ = metroRouting
			sig, err := executor.ExecuteTransaction(ctx, sc.OpCreateTenant, sc.CreateTenantArgs{Code: code}, accounts)
			if err != nil {
				return fmt.Errorf("failed to create tenant: %w", err)
			}
			fmt.Println("Created tenant", code, "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "unique tenant code")
	cmd.Flags().BoolVar(&metroRouting, "metro-routing", false, "ignored: create sends only the tenant code")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func (c *TenantCmd) updateCmd() *cobra.Command {
	var newCode string
	var metroRouting, routeLiveness bool
	cmd := &cobra.Command{
		Use:   "update <code>",
		Short: "Update a tenant",
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
			before, err := findTenantByCode(pd.Tenants, args[0])
			if err != nil {
				return err
			}
			args2 := sc.UpdateTenantArgs{}
			after := before
			if cmd.Flags().Changed("new-code") {
				args2.Code = &newCode
				after.Code = newCode
			}
			if cmd.Flags().Changed("metro-routing") {
				args2.MetroRouting = &metroRouting
				after.MetroRouting = metroRouting
			}
			if cmd.Flags().Changed("route-liveness") {
				args2.RouteLiveness = &routeLiveness
				after.RouteLiveness = routeLiveness
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(before.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpUpdateTenant, args2, accounts)
			if err != nil {
				return fmt.Errorf("failed to update tenant: %w", err)
			}
			if diff := confirmUpdate(before.Code, before, after); diff != "" {
				fmt.Println(diff)
			}
			fmt.Println("Updated tenant", args[0], "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&newCode, "new-code", "", "new tenant code")
	cmd.Flags().BoolVar(&metroRouting, "metro-routing", false, "enable/disable metro routing")
	cmd.Flags().BoolVar(&routeLiveness, "route-liveness", false, "enable/disable route liveness")
	return cmd
}

func (c *TenantCmd) addAdministratorCmd() *cobra.Command {
	return tenantAdministratorCmd("add-administrator", sc.OpAddAdministratorTenant, "Add an administrator to a tenant")
}
func (c *TenantCmd) removeAdministratorCmd() *cobra.Command {
	return tenantAdministratorCmd("remove-administrator", sc.OpRemoveAdministratorTenant, "Remove an administrator from a tenant")
}

func tenantAdministratorCmd(use string, op sc.Opcode, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <code> <administrator-pubkey>",
		Short: short,
		Args:  cobra.ExactArgs(2),
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
			t, err := findTenantByCode(pd.Tenants, args[0])
			if err != nil {
				return err
			}
			admin, err := solana.PublicKeyFromBase58(args[1])
			if err != nil {
				return fmt.Errorf("invalid administrator pubkey: %w", err)
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(t.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, op, sc.AddRemoveAdministratorArgs{Administrator: admin}, accounts)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", use, err)
			}
			fmt.Println(use, "on", t.Code, "signature", sig.String())
			return nil
		},
	}
	return cmd
}

func (c *TenantCmd) updatePaymentStatusCmd() *cobra.Command {
	var status uint8
	cmd := &cobra.Command{
		Use:   "update-payment-status <code>",
		Short: "Set a tenant's payment status",
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
			t, err := findTenantByCode(pd.Tenants, args[0])
			if err != nil {
				return err
			}
			epoch, err := executor.GetEpoch(ctx)
			if err != nil {
				return fmt.Errorf("failed to get current epoch: %w", err)
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(t.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpUpdatePaymentStatusTenant, sc.UpdatePaymentStatusArgs{
				PaymentStatus:        status,
				LastDeductionDzEpoch: &epoch,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to update payment status: %w", err)
			}
			fmt.Println("Updated payment status for", t.Code, "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().Uint8Var(&status, "status", 0, "payment status (0=delinquent,1=paid)")
	return cmd
}

func (c *TenantCmd) deleteCmd() *cobra.Command {
	var allowDeleteUsers bool
	cmd := &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete a tenant, optionally cascading through its pinned users first",
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
			log := newLogger(f.verbose)
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if !allowDeleteUsers {
				pd, err := client.GetProgramData(ctx)
				if err != nil {
					return fmt.Errorf("failed to fetch program data: %w", err)
				}
				t, err := findTenantByCode(pd.Tenants, args[0])
				if err != nil {
					return err
				}
				if t.ReferenceCount != 0 {
					return fmt.Errorf("tenant %q has reference_count=%d; pass --allow-delete-users to cascade", t.Code, t.ReferenceCount)
				}
				accounts := []sc.AccountMeta{
					accountMeta([32]byte(executor.Payer()), true, true),
					accountMeta(t.PubKey, false, true),
				}
				sig, err := executor.ExecuteTransaction(ctx, sc.OpDeleteTenant, nil, accounts)
				if err != nil {
					return fmt.Errorf("failed to delete tenant: %w", err)
				}
				fmt.Println("Deleted tenant", t.Code, "signature", sig.String())
				return nil
			}

			result, err := DeleteTenantCascade(ctx, log, client, executor, args[0])
			if err != nil {
				return fmt.Errorf("cascade delete failed: %w", err)
			}
			fmt.Printf("Deleted %d pinned user(s), scrubbed %d tenant_allowlist reference(s), then deleted tenant %s\n",
				result.DeletedUsers, result.ScrubbedAllowlists, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowDeleteUsers, "allow-delete-users", false, "delete every user pinned to this tenant before deleting it")
	return cmd
}
