package cli

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/spf13/cobra"
)

type LinkCmd struct{}

func NewLinkCmd() *LinkCmd { return &LinkCmd{} }

func (c *LinkCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage links (tunnels) between devices",
	}
	cmd.AddCommand(c.listCmd(), c.getCmd(), c.createCmd(), c.deleteCmd())
	return cmd
}

func (c *LinkCmd) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List links",
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
			sort.Slice(pd.Links, func(i, j int) bool { return pd.Links[i].Code < pd.Links[j].Code })
			header := []string{"Code", "Status", "Side A", "Side Z", "TunnelID", "TunnelNet", "PubKey"}
			rows := make([][]string, 0, len(pd.Links))
			deviceCode := func(pk [32]byte) string {
				for _, d := range pd.Devices {
					if d.PubKey == pk {
						return d.Code
					}
				}
				return pubkeyString(pk)
			}
			for _, l := range pd.Links {
				rows = append(rows, []string{
					l.Code, l.Status.String(), deviceCode(l.SideAPubKey), deviceCode(l.SideZPubKey),
					fmt.Sprintf("%d", l.TunnelId), netString(l.TunnelNet), pubkeyString(l.PubKey),
				})
			}
			return printList(f, header, rows, pd.Links)
		},
	}
}

func (c *LinkCmd) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get a single link by code",
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
			l, err := findLinkByCode(pd.Links, args[0])
			if err != nil {
				return err
			}
			header := []string{"Field", "Value"}
			rows := [][]string{
				{"Code", l.Code},
				{"Status", l.Status.String()},
				{"TunnelID", fmt.Sprintf("%d", l.TunnelId)},
				{"TunnelNet", netString(l.TunnelNet)},
				{"Bandwidth", fmt.Sprintf("%d", l.Bandwidth)},
				{"PubKey", pubkeyString(l.PubKey)},
			}
			return printList(f, header, rows, l)
		},
	}
}

func (c *LinkCmd) createCmd() *cobra.Command {
	var code, sideACode, sideZCode, sideAIface, sideZIface, contributorCode string
	var bandwidth uint64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a link (Pending, activated by the activator)",
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
			sideA, err := findDeviceByCode(pd.Devices, sideACode)
			if err != nil {
				return err
			}
			sideZ, err := findDeviceByCode(pd.Devices, sideZCode)
			if err != nil {
				return err
			}
			contrib, err := findContributorByCode(pd.Contributors, contributorCode)
			if err != nil {
				return err
			}

			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(sideA.PubKey, false, true),
				accountMeta(sideZ.PubKey, false, true),
				accountMeta(contrib.PubKey, false, false),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpCreateLink, sc.CreateLinkArgs{
				Code:           code,
				ContributorPK:  executor.Payer(),
				SideAPK:        sideA.PubKey,
				SideZPK:        sideZ.PubKey,
				SideAIfaceName: sideAIface,
				SideZIfaceName: sideZIface,
				Bandwidth:      bandwidth,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to create link: %w", err)
			}
			fmt.Println("Created link", code, "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "unique link code")
	cmd.Flags().StringVar(&sideACode, "side-a", "", "side A device code")
	cmd.Flags().StringVar(&sideZCode, "side-z", "", "side Z device code")
	cmd.Flags().StringVar(&sideAIface, "side-a-iface", "", "side A interface name")
	cmd.Flags().StringVar(&sideZIface, "side-z-iface", "", "side Z interface name")
	cmd.Flags().StringVar(&contributorCode, "contributor", "", "contributor code")
	cmd.Flags().Uint64Var(&bandwidth, "bandwidth", 0, "link bandwidth, in bits/sec")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("side-a")
	_ = cmd.MarkFlagRequired("side-z")
	return cmd
}

func (c *LinkCmd) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete a link",
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
			l, err := findLinkByCode(pd.Links, args[0])
			if err != nil {
				return err
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(l.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpDeleteLink, nil, accounts)
			if err != nil {
				return fmt.Errorf("failed to delete link: %w", err)
			}
			fmt.Println("Deleted link", l.Code, "signature", sig.String())
			return nil
		},
	}
}
