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

type MulticastGroupCmd struct{}

func NewMulticastGroupCmd() *MulticastGroupCmd { return &MulticastGroupCmd{} }

func (c *MulticastGroupCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multicastgroup",
		Short: "Manage multicast groups",
	}

	allowlistCmd := &cobra.Command{Use: "allowlist", Short: "Mutate access pass multicast allowlists"}
	publisherCmd := &cobra.Command{Use: "publisher", Short: "Manage publisher allowlist entries"}
	publisherCmd.AddCommand(
		c.allowlistMutationCmd("add", sc.OpAddPublisherMulticastGroup, "Add an access pass to a group's publisher allowlist"),
		c.allowlistMutationCmd("remove", sc.OpRemovePublisherMulticastGroup, "Remove an access pass from a group's publisher allowlist"),
	)
	subscriberCmd := &cobra.Command{Use: "subscriber", Short: "Manage subscriber allowlist entries"}
	subscriberCmd.AddCommand(
		c.allowlistMutationCmd("add", sc.OpAddSubscriberMulticastGroup, "Add an access pass to a group's subscriber allowlist"),
		c.allowlistMutationCmd("remove", sc.OpRemoveSubscriberMulticastGroup, "Remove an access pass from a group's subscriber allowlist"),
	)
	allowlistCmd.AddCommand(publisherCmd, subscriberCmd)

	cmd.AddCommand(c.listCmd(), c.getCmd(), c.createCmd(), allowlistCmd, c.deleteCmd())
	return cmd
}

func (c *MulticastGroupCmd) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List multicast groups",
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
			sort.Slice(pd.MulticastGroups, func(i, j int) bool { return pd.MulticastGroups[i].Code < pd.MulticastGroups[j].Code })
			header := []string{"Code", "Status", "Multicast IP", "Publishers", "Subscribers", "PubKey"}
			rows := make([][]string, 0, len(pd.MulticastGroups))
			for _, g := range pd.MulticastGroups {
				rows = append(rows, []string{
					g.Code, g.Status.String(), ipString(g.MulticastIp),
					fmt.Sprintf("%d", g.PublisherCount), fmt.Sprintf("%d", g.SubscriberCount), pubkeyString(g.PubKey),
				})
			}
			return printList(f, header, rows, pd.MulticastGroups)
		},
	}
}

func (c *MulticastGroupCmd) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get a single multicast group by code",
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
			g, err := findMulticastGroupByCode(pd.MulticastGroups, args[0])
			if err != nil {
				return err
			}
			header := []string{"Field", "Value"}
			rows := [][]string{
				{"Code", g.Code},
				{"Status", g.Status.String()},
				{"MulticastIP", ipString(g.MulticastIp)},
				{"MaxBandwidth", fmt.Sprintf("%d", g.MaxBandwidth)},
				{"PublisherCount", fmt.Sprintf("%d", g.PublisherCount)},
				{"SubscriberCount", fmt.Sprintf("%d", g.SubscriberCount)},
				{"PubKey", pubkeyString(g.PubKey)},
			}
			return printList(f, header, rows, g)
		},
	}
}

func (c *MulticastGroupCmd) createCmd() *cobra.Command {
	var code string
	var maxBandwidth uint64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a multicast group (Pending, activated by the activator)",
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
			sig, err := executor.ExecuteTransaction(ctx, sc.OpCreateMulticastGroup, sc.CreateMulticastGroupArgs{
				Code:         code,
				MaxBandwidth: maxBandwidth,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to create multicast group: %w", err)
			}
			fmt.Println("Created multicast group", code, "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "unique group code")
	cmd.Flags().Uint64Var(&maxBandwidth, "max-bandwidth", 0, "maximum aggregate bandwidth, in bits/sec")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func (c *MulticastGroupCmd) allowlistMutationCmd(use string, op sc.Opcode, short string) *cobra.Command {
	var groupCode, accessPassPubkey string
	cmd := &cobra.Command{
		Use:   use + " <access-pass-pubkey>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accessPassPubkey = args[0]
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
			group, err := findMulticastGroupByCode(pd.MulticastGroups, groupCode)
			if err != nil {
				return err
			}
			pass, err := findAccessPassByPubkey(pd.AccessPasses, accessPassPubkey)
			if err != nil {
				return err
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(pass.PubKey, false, true),
				accountMeta(group.PubKey, false, false),
			}
			sig, err := executor.ExecuteTransaction(ctx, op, nil, accounts)
			if err != nil {
				return fmt.Errorf("failed to mutate allowlist: %w", err)
			}
			fmt.Println(use, "on", groupCode, "for access pass", accessPassPubkey, "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&groupCode, "group", "", "multicast group code")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func (c *MulticastGroupCmd) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "Scrub the group from every access pass allowlist, then delete it",
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

			result, err := DeleteMulticastGroup(ctx, log, client, executor, args[0])
			if err != nil {
				return fmt.Errorf("delete multicast group failed: %w", err)
			}
			fmt.Printf("Removed from %d AccessPass allowlist(s)\n", result.ScrubbedCount)
			if len(result.Failures) > 0 {
				fmt.Println("Warning: the following scrub operations failed:")
				for _, fail := range result.Failures {
					fmt.Printf("  ✗ %s (%s side): %v\n", fail.AccessPassPubkey, fail.Side, fail.Err)
				}
			}
			return nil
		},
	}
}

func findAccessPassByPubkey(passes []sc.AccessPass, pubkey string) (sc.AccessPass, error) {
	for _, p := range passes {
		if pubkeyString(p.PubKey) == pubkey {
			return p, nil
		}
	}
	return sc.AccessPass{}, fmt.Errorf("access pass %q not found", pubkey)
}
