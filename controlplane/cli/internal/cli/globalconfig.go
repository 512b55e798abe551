package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/spf13/cobra"
)

type GlobalConfigCmd struct{}

func NewGlobalConfigCmd() *GlobalConfigCmd { return &GlobalConfigCmd{} }

func (c *GlobalConfigCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "globalconfig",
		Short: "Manage the singleton global config account",
	}
	cmd.AddCommand(c.getCmd(), c.setCmd())
	return cmd
}

func (c *GlobalConfigCmd) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the global config account",
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
			if pd.GlobalConfig == nil {
				return fmt.Errorf("global config account not found")
			}
			cfg := pd.GlobalConfig
			header := []string{"Field", "Value"}
			rows := [][]string{
				{"LocalASN", fmt.Sprintf("%d", cfg.LocalASN)},
				{"RemoteASN", fmt.Sprintf("%d", cfg.RemoteASN)},
				{"DeviceTunnelBlock", netString(cfg.DeviceTunnelBlock)},
				{"UserTunnelBlock", netString(cfg.UserTunnelBlock)},
				{"MulticastGroupBlock", netString(cfg.MulticastGroupBlock)},
				{"MulticastPublisherBlock", netString(cfg.MulticastPublisherBlock)},
				{"NextBGPCommunity", fmt.Sprintf("%d", cfg.NextBGPCommunity)},
				{"PubKey", pubkeyString(cfg.PubKey)},
			}
			return printList(f, header, rows, cfg)
		},
	}
}

func (c *GlobalConfigCmd) setCmd() *cobra.Command {
	var localASN, remoteASN uint32
	var deviceTunnelBlock, userTunnelBlock, multicastGroupBlock, multicastPublisherBlock string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the global config account (requires foundation authority)",
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
			if pd.GlobalConfig == nil {
				return fmt.Errorf("global config account not found")
			}

			deviceBlock, err := parseNetworkV4(deviceTunnelBlock)
			if err != nil {
				return fmt.Errorf("invalid device tunnel block: %w", err)
			}
			userBlock, err := parseNetworkV4(userTunnelBlock)
			if err != nil {
				return fmt.Errorf("invalid user tunnel block: %w", err)
			}
			mcastBlock, err := parseNetworkV4(multicastGroupBlock)
			if err != nil {
				return fmt.Errorf("invalid multicast group block: %w", err)
			}
			mcastPubBlock, err := parseNetworkV4(multicastPublisherBlock)
			if err != nil {
				return fmt.Errorf("invalid multicast publisher block: %w", err)
			}

			accounts := []sc.AccountMeta{
				accountMeta([32]byte(executor.Payer()), true, true),
				accountMeta(pd.GlobalConfig.PubKey, false, true),
			}
			sig, err := executor.ExecuteTransaction(ctx, sc.OpSetGlobalConfig, sc.SetGlobalConfigArgs{
				LocalASN:                localASN,
				RemoteASN:               remoteASN,
				DeviceTunnelBlock:       deviceBlock,
				UserTunnelBlock:         userBlock,
				MulticastGroupBlock:     mcastBlock,
				MulticastPublisherBlock: mcastPubBlock,
			}, accounts)
			if err != nil {
				return fmt.Errorf("failed to set global config: %w", err)
			}
			fmt.Println("Updated global config, signature", sig.String())
			return nil
		},
	}
	cmd.Flags().Uint32Var(&localASN, "local-asn", 0, "local BGP ASN")
	cmd.Flags().Uint32Var(&remoteASN, "remote-asn", 0, "remote BGP ASN")
	cmd.Flags().StringVar(&deviceTunnelBlock, "device-tunnel-block", "", "device tunnel CIDR block, e.g. 172.16.0.0/16")
	cmd.Flags().StringVar(&userTunnelBlock, "user-tunnel-block", "", "user tunnel CIDR block")
	cmd.Flags().StringVar(&multicastGroupBlock, "multicast-group-block", "", "multicast group CIDR block")
	cmd.Flags().StringVar(&multicastPublisherBlock, "multicast-publisher-block", "", "multicast publisher CIDR block")
	_ = cmd.MarkFlagRequired("local-asn")
	_ = cmd.MarkFlagRequired("remote-asn")
	_ = cmd.MarkFlagRequired("device-tunnel-block")
	_ = cmd.MarkFlagRequired("user-tunnel-block")
	_ = cmd.MarkFlagRequired("multicast-group-block")
	_ = cmd.MarkFlagRequired("multicast-publisher-block")
	return cmd
}
