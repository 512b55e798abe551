package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/spf13/cobra"
)

type DeviceCmd struct{}

func NewDeviceCmd() *DeviceCmd { return &DeviceCmd{} }

func (c *DeviceCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage devices",
	}
	cmd.AddCommand(
		c.listCmd(),
		c.getCmd(),
		c.createCmd(),
		c.updateCmd(),
		c.activateCmd(),
		c.suspendCmd(),
		c.resumeCmd(),
		c.deleteCmd(),
	)
	return cmd
}

func (c *DeviceCmd) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List devices",
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
			sort.Slice(pd.Devices, func(i, j int) bool { return pd.Devices[i].Code < pd.Devices[j].Code })
			header := []string{"Code", "Status", "Type", "Public IP", "Users", "Max Users", "PubKey"}
			rows := make([][]string, 0, len(pd.Devices))
			for _, d := range pd.Devices {
				rows = append(rows, []string{
					d.Code, d.Status.String(), fmt.Sprintf("%d", d.DeviceType), ipString(d.PublicIp),
					fmt.Sprintf("%d", d.UsersCount), fmt.Sprintf("%d", d.MaxUsers), pubkeyString(d.PubKey),
				})
			}
			return printList(f, header, rows, pd.Devices)
		},
	}
}

func (c *DeviceCmd) getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <code>",
		Short: "Get a single device by code",
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
			d, err := findDeviceByCode(pd.Devices, args[0])
			if err != nil {
				return err
			}
			header := []string{"Field", "Value"}
			rows := [][]string{
				{"Code", d.Code},
				{"Status", d.Status.String()},
				{"PublicIP", ipString(d.PublicIp)},
				{"MgmtVrf", d.MgmtVrf},
				{"UsersCount", fmt.Sprintf("%d", d.UsersCount)},
				{"MaxUsers", fmt.Sprintf("%d", d.MaxUsers)},
				{"ReferenceCount", fmt.Sprintf("%d", d.ReferenceCount)},
				{"PubKey", pubkeyString(d.PubKey)},
			}
			return printList(f, header, rows, d)
		},
	}
	return cmd
}

func (c *DeviceCmd) createCmd() *cobra.Command {
	var code, mgmtVrf, locationCode, exchangeCode, contributorCode string
	var deviceType uint8
	var publicIP string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a device (Pending, activated by the activator)",
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
			loc, err := findLocationByCode(pd.Locations, locationCode)
			if err != nil {
				return err
			}
			exch, err := findExchangeByCode(pd.Exchanges, exchangeCode)
			if err != nil {
				return err
			}
			contrib, err := findContributorByCode(pd.Contributors, contributorCode)
			if err != nil {
				return err
			}
			ip, err := parseIPv4(publicIP)
			if err != nil {
				return err
			}

			if pd.GlobalState == nil {
				return fmt.Errorf("global state account not found")
			}
			authority := executor.Payer()
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(authority), true, true),
				accountMeta(pd.GlobalState.PubKey, false, true),
				accountMeta(loc.PubKey, false, true),
				accountMeta(exch.PubKey, false, true),
				accountMeta(contrib.PubKey, false, true),
			}

			sig, err := executor.ExecuteTransaction(ctx, sc.OpCreateDevice, sc.CreateDeviceArgs{
				Code:             code,
				DeviceType:       deviceType,
				PublicIp:         ip,
				MetricsPublisher: authority,
				MgmtVrf:          mgmtVrf,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to create device: %w", err)
			}
			fmt.Println("Created device", code, "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "unique device code")
	cmd.Flags().Uint8Var(&deviceType, "type", 0, "device type")
	cmd.Flags().StringVar(&publicIP, "public-ip", "", "device public IPv4 address")
	cmd.Flags().StringVar(&mgmtVrf, "mgmt-vrf", "", "management VRF name")
	cmd.Flags().StringVar(&locationCode, "location", "", "location code")
	cmd.Flags().StringVar(&exchangeCode, "exchange", "", "exchange code")
	cmd.Flags().StringVar(&contributorCode, "contributor", "", "contributor code")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("exchange")
	_ = cmd.MarkFlagRequired("contributor")
	return cmd
}

func (c *DeviceCmd) updateCmd() *cobra.Command {
	var code, newCode, mgmtVrf string
	cmd := &cobra.Command{
		Use:   "update <code>",
		Short: "Update a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code = args[0]
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
			before, err := findDeviceByCode(pd.Devices, code)
			if err != nil {
				return err
			}

			args2 := sc.UpdateDeviceArgs{}
			after := before
			if cmd.Flags().Changed("new-code") {
				args2.Code = &newCode
				after.Code = newCode
			}
			if cmd.Flags().Changed("mgmt-vrf") {
				args2.MgmtVrf = &mgmtVrf
				after.MgmtVrf = mgmtVrf
			}

			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(before.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpUpdateDevice, args2, accounts)
			if err != nil {
				return fmt.Errorf("failed to update device: %w", err)
			}
			if diff := confirmUpdate(code, before, after); diff != "" {
				fmt.Println(diff)
			}
			fmt.Println("Updated device", code, "signature", sig.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&newCode, "new-code", "", "new device code")
	cmd.Flags().StringVar(&mgmtVrf, "mgmt-vrf", "", "new management VRF name")
	return cmd
}

func (c *DeviceCmd) activateCmd() *cobra.Command {
	return deviceLifecycleCmd("activate", sc.OpActivateDevice, "Activate a Pending device (normally driven by the activator)")
}
func (c *DeviceCmd) suspendCmd() *cobra.Command {
	return deviceLifecycleCmd("suspend", sc.OpSuspendDevice, "Suspend an Activated device")
}
func (c *DeviceCmd) resumeCmd() *cobra.Command {
	return deviceLifecycleCmd("resume", sc.OpResumeDevice, "Resume a Suspended device")
}
func (c *DeviceCmd) deleteCmd() *cobra.Command {
	return deviceLifecycleCmd("delete", sc.OpDeleteDevice, "Delete a device (requires users_count == 0 and reference_count == 0)")
}

// deviceLifecycleCmd builds a no-argument-payload device transition
// subcommand (activate/suspend/resume/delete all submit nil args and a
// two-account list: authority, device).
func deviceLifecycleCmd(use string, op sc.Opcode, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <code>",
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
			d, err := findDeviceByCode(pd.Devices, args[0])
			if err != nil {
				return err
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(d.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, op, nil, accounts)
			if err != nil {
				return fmt.Errorf("failed to %s device: %w", use, err)
			}
			fmt.Println(use, "device", d.Code, "signature", sig.String())
			return nil
		},
	}
}

func findDeviceByCode(devices []sc.Device, code string) (sc.Device, error) {
	for _, d := range devices {
		if d.Code == code {
			return d, nil
		}
	}
	return sc.Device{}, fmt.Errorf("device %q not found", code)
}

func parseIPv4(s string) ([4]byte, error) {
	var out [4]byte
	var a, b, cc, d int
	n, err := fmt.Sscanf(s, "%d.%d.%d.%d", &a, &b, &cc, &d)
	if err != nil || n != 4 {
		return out, fmt.Errorf("invalid IPv4 address %q", s)
	}
	out[0], out[1], out[2], out[3] = byte(a), byte(b), byte(cc), byte(d)
	return out, nil
}

func parseNetworkV4(s string) (sc.NetworkV4, error) {
	var out sc.NetworkV4
	var a, b, cc, d, prefix int
	n, err := fmt.Sscanf(s, "%d.%d.%d.%d/%d", &a, &b, &cc, &d, &prefix)
	if err != nil || n != 5 {
		return out, fmt.Errorf("invalid CIDR block %q", s)
	}
	out[0], out[1], out[2], out[3], out[4] = byte(a), byte(b), byte(cc), byte(d), byte(prefix)
	return out, nil
}

var _ = os.Stdout
