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

type UserCmd struct{}

func NewUserCmd() *UserCmd { return &UserCmd{} }

func (c *UserCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users (tunnel subscriptions)",
	}
	cmd.AddCommand(c.listCmd(), c.getCmd(), c.createSubscribeCmd(), c.updateCmd(), c.suspendCmd(), c.resumeCmd(), c.disconnectCmd())
	return cmd
}

func (c *UserCmd) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
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
			sort.Slice(pd.Users, func(i, j int) bool { return pubkeyString(pd.Users[i].PubKey) < pubkeyString(pd.Users[j].PubKey) })
			header := []string{"PubKey", "Status", "Type", "ClientIP", "DzIP", "TunnelID"}
			rows := make([][]string, 0, len(pd.Users))
			for _, u := range pd.Users {
				rows = append(rows, []string{
					pubkeyString(u.PubKey), u.Status.String(), u.UserType.String(),
					ipString(u.ClientIp), ipString(u.DzIp), fmt.Sprintf("%d", u.TunnelId),
				})
			}
			return printList(f, header, rows, pd.Users)
		},
	}
}

func (c *UserCmd) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <pubkey>",
		Short: "Get a single user by its account pubkey",
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
			u, err := findUserByPubkey(pd.Users, args[0])
			if err != nil {
				return err
			}
			header := []string{"Field", "Value"}
			rows := [][]string{
				{"Status", u.Status.String()},
				{"Type", u.UserType.String()},
				{"ClientIP", ipString(u.ClientIp)},
				{"DzIP", ipString(u.DzIp)},
				{"TunnelID", fmt.Sprintf("%d", u.TunnelId)},
				{"TunnelNet", netString(u.TunnelNet)},
				{"PubKey", pubkeyString(u.PubKey)},
			}
			return printList(f, header, rows, u)
		},
	}
}

// createSubscribeCmd submits CreateUser: the request half of a User
// subscribing to the network, left Pending until the activator allocates
// its tunnel resources (§4.4.3).
func (c *UserCmd) createSubscribeCmd() *cobra.Command {
	var deviceCode, clientIP string
	var userType, cyoaType uint8
	cmd := &cobra.Command{
		Use:   "create-subscribe",
		Short: "Request a tunnel subscription against a device",
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
			device, err := findDeviceByCode(pd.Devices, deviceCode)
			if err != nil {
				return err
			}
			ip, err := parseIPv4(clientIP)
			if err != nil {
				return err
			}
			payer := executor.Payer()
			pass, err := findAccessPassFor(pd.AccessPasses, payer, ip)
			if err != nil {
				return err
			}

			accounts := []sc.AccountMeta{
				accountMeta([32]byte(payer), true, true),
				accountMeta(device.PubKey, false, true),
				accountMeta(pass.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpCreateUser, sc.CreateUserArgs{
				DevicePK: device.PubKey,
				UserType: userType,
				CyoaType: cyoaType,
				ClientIp: ip,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Println("Requested subscription against", deviceCode, "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceCode, "device", "", "device code to connect through")
	cmd.Flags().StringVar(&clientIP, "client-ip", "", "client public IPv4 address")
	cmd.Flags().Uint8Var(&userType, "type", 0, "user type (0=ibrl,1=ibrl_with_allocated_ip,2=edge_filtering,3=multicast)")
	cmd.Flags().Uint8Var(&cyoaType, "cyoa-type", 0, "connect-your-own-access type")
	_ = cmd.MarkFlagRequired("device")
	_ = cmd.MarkFlagRequired("client-ip")
	return cmd
}

func (c *UserCmd) updateCmd() *cobra.Command {
	var pubkey string
	var userType uint8
	cmd := &cobra.Command{
		Use:   "update <pubkey>",
		Short: "Update a user record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubkey = args[0]
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
			before, err := findUserByPubkey(pd.Users, pubkey)
			if err != nil {
				return err
			}
			args2 := sc.UpdateUserArgs{}
			after := before
			if cmd.Flags().Changed("type") {
				args2.UserType = &userType
				after.UserType = sc.UserUserType(userType)
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(before.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpUpdateUser, args2, accounts)
			if err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
			if diff := confirmUpdate(pubkey, before, after); diff != "" {
				fmt.Println(diff)
			}
			fmt.Println("Updated user", pubkey, "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().Uint8Var(&userType, "type", 0, "new user type")
	return cmd
}

func (c *UserCmd) suspendCmd() *cobra.Command {
	return userLifecycleCmd("suspend", sc.OpSuspendUser, "Suspend an Activated user")
}
func (c *UserCmd) resumeCmd() *cobra.Command {
	return userLifecycleCmd("resume", sc.OpResumeUser, "Resume a Suspended user (re-checks its AccessPass)")
}

// userLifecycleCmd builds a no-argument-payload user transition subcommand
// (suspend/resume submit nil args and a two-account list: authority, user).
func userLifecycleCmd(use string, op sc.Opcode, short string) *cobra.Command {
	return &cobra.Command{
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
			u, err := findUserByPubkey(pd.Users, args[0])
			if err != nil {
				return err
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(u.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, op, nil, accounts)
			if err != nil {
				return fmt.Errorf("failed to %s user: %w", use, err)
			}
			fmt.Println(use, "user", args[0], "signature", sig.String())
			return nil
		},
	}
}

func (c *UserCmd) disconnectCmd() *cobra.Command {
	var userType uint8
	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Delete every local user and wait for the tunnel daemon to report no active services",
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

			var filterType *sc.UserUserType
			if cmd.Flags().Changed("type") {
				t := sc.UserUserType(userType)
				filterType = &t
			}
			result, err := Disconnect(ctx, log, client, executor, DisconnectConfig{UserType: filterType})
			if err != nil {
				return fmt.Errorf("disconnect failed: %w", err)
			}
			fmt.Printf("Deleted %d user(s); tunnel daemon reports disconnected: %v\n", result.DeletedUsers, result.Disconnected)
			return nil
		},
	}
	cmd.Flags().Uint8Var(&userType, "type", 0, "only disconnect users of this type")
	return cmd
}

func findAccessPassFor(passes []sc.AccessPass, payer [32]byte, clientIP [4]byte) (sc.AccessPass, error) {
	for _, p := range passes {
		if p.UserPayer == payer && (p.ClientIp == clientIP || (p.IsDynamic() && p.ClientIp == [4]byte{})) {
			return p, nil
		}
	}
	return sc.AccessPass{}, fmt.Errorf("no access pass found for payer/client-ip pair")
}
