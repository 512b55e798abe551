package activator

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/dz-network/doublezero/controlplane/activator/internal/metrics"
	"github.com/dz-network/doublezero/sdk/allocator/go/idalloc"
	"github.com/dz-network/doublezero/sdk/allocator/go/ipalloc"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/dz-network/doublezero/sdk/statemachine/go"
)

// handleUpdate inspects one account update against the mirror and, when it
// names an entity waiting in Pending, drives it through the matching
// statemachine transition and submits the resulting instruction. Updates
// for entities that are not Pending, or whose type the activator does not
// act on, are no-ops — the mirror's copy is still refreshed so later
// updates (e.g. a Link activation that reads both endpoint Devices) see
// current state.
func (a *Activator) handleUpdate(ctx context.Context, u sc.AccountUpdate) error {
	reader := sc.NewByteReader(u.Data)

	switch u.AccountType {
	case sc.DeviceType:
		var d sc.Device
		sc.DeserializeDevice(reader, &d)
		a.mirror.Devices[d.PubKey] = &d
		return a.handleDevice(ctx, &d)

	case sc.LinkType:
		var l sc.Link
		sc.DeserializeLink(reader, &l)
		a.mirror.Links[l.PubKey] = &l
		return a.handleLink(ctx, &l)

	case sc.UserType:
		var usr sc.User
		sc.DeserializeUser(reader, &usr)
		a.mirror.Users[usr.PubKey] = &usr
		return a.handleUser(ctx, &usr)

	case sc.MulticastGroupType:
		var g sc.MulticastGroup
		sc.DeserializeMulticastGroup(reader, &g)
		a.mirror.MulticastGroups[g.PubKey] = &g
		return a.handleMulticastGroup(ctx, &g)

	case sc.GlobalConfigType:
		var cfg sc.GlobalConfig
		sc.DeserializeGlobalConfig(reader, &cfg)
		a.mirror.GlobalConfig = &cfg
		return nil

	case sc.GlobalStateType:
		var gs sc.GlobalState
		sc.DeserializeGlobalState(reader, &gs)
		a.mirror.GlobalState = &gs
		return nil

	case sc.ContributorType:
		var c sc.Contributor
		sc.DeserializeContributor(reader, &c)
		a.mirror.Contributors[c.PubKey] = &c
		return nil

	case sc.LocationType:
		var l sc.Location
		sc.DeserializeLocation(reader, &l)
		a.mirror.Locations[l.PubKey] = &l
		return nil

	case sc.ExchangeType:
		var e sc.Exchange
		sc.DeserializeExchange(reader, &e)
		a.mirror.Exchanges[e.PubKey] = &e
		return nil

	case sc.AccessPassType:
		var ap sc.AccessPass
		sc.DeserializeAccessPass(reader, &ap)
		a.mirror.AccessPasses[ap.PubKey] = &ap
		return nil

	case sc.TenantType:
		var t sc.Tenant
		sc.DeserializeTenant(reader, &t)
		a.mirror.Tenants[t.PubKey] = &t
		return nil

	default:
		return nil
	}
}

// markInFlight reports whether an activation for pubkey is already being
// submitted, and if not, marks it so until it TTLs out or the submission
// completes (§4.5's "no double-activation on a replayed or overlapping
// update" requirement).
func (a *Activator) markInFlight(pubkey [32]byte) bool {
	key := solana.PublicKey(pubkey).String()
	if a.inFlight.Has(key) {
		return false
	}
	a.inFlight.Set(key, struct{}{}, a.cfg.InFlightTTL)
	return true
}

func (a *Activator) clearInFlight(pubkey [32]byte) {
	a.inFlight.Delete(solana.PublicKey(pubkey).String())
}

func (a *Activator) handleDevice(ctx context.Context, d *sc.Device) error {
	if d.Status != sc.DeviceStatusPending {
		return nil
	}
	if !a.markInFlight(d.PubKey) {
		metrics.DuplicateEventSkipped.WithLabelValues("device").Inc()
		return nil
	}
	defer a.clearInFlight(d.PubKey)

	if err := statemachine.ActivateDevice(d); err != nil {
		metrics.Errors.WithLabelValues("activate_device").Inc()
		return fmt.Errorf("activate device %s: %w", solana.PublicKey(d.PubKey), err)
	}

	_, err := a.cfg.Executor.ExecuteTransaction(ctx, sc.OpActivateDevice, sc.ActivateDeviceArgs{}, a.deviceAccounts(d))
	if err != nil {
		metrics.Errors.WithLabelValues("activate_device").Inc()
		return fmt.Errorf("submit activate device %s: %w", solana.PublicKey(d.PubKey), err)
	}
	metrics.ActivationsTotal.WithLabelValues("device").Inc()
	return nil
}

func (a *Activator) handleLink(ctx context.Context, l *sc.Link) error {
	if l.Status != sc.LinkStatusPending {
		return nil
	}
	sideA, okA := a.mirror.Devices[l.SideAPubKey]
	sideZ, okZ := a.mirror.Devices[l.SideZPubKey]
	if !okA || !okZ || sideA.Status != sc.DeviceStatusActivated || sideZ.Status != sc.DeviceStatusActivated {
		return nil // endpoints not both Activated yet; revisit on their next update
	}
	if a.mirror.linkIDs == nil || a.mirror.deviceTunnelBlock == nil {
		return fmt.Errorf("link activation: global resource pools not loaded")
	}
	if !a.markInFlight(l.PubKey) {
		metrics.DuplicateEventSkipped.WithLabelValues("link").Inc()
		return nil
	}
	defer a.clearInFlight(l.PubKey)

	endpoints := statemachine.LinkEndpoints{
		SideA:      sideA,
		SideZ:      sideZ,
		SideAIface: findInterfaceByName(sideA, l.SideAIfaceName),
		SideZIface: findInterfaceByName(sideZ, l.SideZIfaceName),
	}
	if endpoints.SideAIface == nil || endpoints.SideZIface == nil {
		metrics.Errors.WithLabelValues("activate_link").Inc()
		return fmt.Errorf("activate link %s: interface not found", solana.PublicKey(l.PubKey))
	}

	err := statemachine.ActivateLink(l, endpoints, a.mirror.linkIDs.idAlloc, a.mirror.linkIDs.bitmap,
		a.mirror.deviceTunnelBlock.ipAlloc, a.mirror.deviceTunnelBlock.bitmap)
	if err != nil {
		if errors.Is(err, idalloc.ErrRangeExhausted) || errors.Is(err, ipalloc.ErrOutOfRange) {
			metrics.ResourceExhausted.WithLabelValues("link_tunnel").Inc()
		}
		metrics.Errors.WithLabelValues("activate_link").Inc()
		return fmt.Errorf("activate link %s: %w", solana.PublicKey(l.PubKey), err)
	}

	args := sc.ActivateLinkArgs{TunnelID: l.TunnelId, TunnelNet: sc.NetworkV4(l.TunnelNet)}
	if _, err := a.cfg.Executor.ExecuteTransaction(ctx, sc.OpActivateLink, args, a.linkAccounts(l)); err != nil {
		metrics.Errors.WithLabelValues("activate_link").Inc()
		return fmt.Errorf("submit activate link %s: %w", solana.PublicKey(l.PubKey), err)
	}
	metrics.ActivationsTotal.WithLabelValues("link").Inc()
	return nil
}

func (a *Activator) handleUser(ctx context.Context, u *sc.User) error {
	if u.Status != sc.UserStatusPending {
		return nil
	}
	device, ok := a.mirror.Devices[u.DevicePubKey]
	if !ok || device.Status != sc.DeviceStatusActivated {
		return nil
	}
	pass := a.findAccessPassForUser(u)
	if pass == nil {
		return nil // access pass not seen yet; revisit on its next update
	}
	deviceTunnelIDs, ok := a.mirror.deviceTunnelIDs[device.PubKey]
	if !ok {
		return fmt.Errorf("user activation: no tunnel id pool for device %s", solana.PublicKey(device.PubKey))
	}
	dzPrefixBlock, ok := a.mirror.dzPrefixBlocks[device.PubKey]
	if !ok {
		return fmt.Errorf("user activation: no dz prefix block for device %s", solana.PublicKey(device.PubKey))
	}
	if a.mirror.userTunnelBlock == nil {
		return fmt.Errorf("user activation: global user tunnel block not loaded")
	}
	if !a.markInFlight(u.PubKey) {
		metrics.DuplicateEventSkipped.WithLabelValues("user").Inc()
		return nil
	}
	defer a.clearInFlight(u.PubKey)

	if pass.Status == sc.AccessPassStatusExpired {
		if err := statemachine.ActivateUser(u, pass, statemachine.ActivateUserArgs{}); err != nil {
			metrics.Errors.WithLabelValues("activate_user").Inc()
			return fmt.Errorf("activate user %s: %w", solana.PublicKey(u.PubKey), err)
		}
		_, err := a.cfg.Executor.ExecuteTransaction(ctx, sc.OpUpdateUser, sc.UpdateUserArgs{}, a.userAccounts(u))
		return err
	}

	tunnelID, err := deviceTunnelIDs.idAlloc.NextAvailable(deviceTunnelIDs.bitmap)
	if err != nil {
		if errors.Is(err, idalloc.ErrRangeExhausted) {
			metrics.ResourceExhausted.WithLabelValues("device_tunnel_id").Inc()
		}
		return fmt.Errorf("allocate tunnel id for user %s: %w", solana.PublicKey(u.PubKey), err)
	}
	tunnelNet, ok := a.mirror.userTunnelBlock.ipAlloc.Allocate(a.mirror.userTunnelBlock.bitmap, 2)
	if !ok {
		_ = deviceTunnelIDs.idAlloc.Unassign(deviceTunnelIDs.bitmap, tunnelID)
		metrics.ResourceExhausted.WithLabelValues("user_tunnel_net").Inc()
		return fmt.Errorf("allocate tunnel net for user %s: %w", solana.PublicKey(u.PubKey), ipalloc.ErrOutOfRange)
	}
	allocated, ok := dzPrefixBlock.ipAlloc.Allocate(dzPrefixBlock.bitmap, 1)
	if !ok {
		_ = deviceTunnelIDs.idAlloc.Unassign(deviceTunnelIDs.bitmap, tunnelID)
		_ = a.mirror.userTunnelBlock.ipAlloc.Deallocate(a.mirror.userTunnelBlock.bitmap, tunnelNet)
		metrics.ResourceExhausted.WithLabelValues("dz_prefix").Inc()
		return fmt.Errorf("allocate dz ip for user %s: %w", solana.PublicKey(u.PubKey), ipalloc.ErrOutOfRange)
	}
	dzIP := [4]uint8{allocated[0], allocated[1], allocated[2], allocated[3]}

	args := statemachine.ActivateUserArgs{
		TunnelID:  tunnelID,
		TunnelNet: [5]uint8(tunnelNet),
		DzIp:      dzIP,
	}
	if err := statemachine.ActivateUser(u, pass, args); err != nil {
		metrics.Errors.WithLabelValues("activate_user").Inc()
		return fmt.Errorf("activate user %s: %w", solana.PublicKey(u.PubKey), err)
	}

	activateArgs := sc.ActivateUserArgs{TunnelID: tunnelID, TunnelNet: sc.NetworkV4(tunnelNet), DzIp: u.DzIp}
	if _, err := a.cfg.Executor.ExecuteTransaction(ctx, sc.OpActivateUser, activateArgs, a.userAccounts(u)); err != nil {
		metrics.Errors.WithLabelValues("activate_user").Inc()
		return fmt.Errorf("submit activate user %s: %w", solana.PublicKey(u.PubKey), err)
	}
	metrics.ActivationsTotal.WithLabelValues("user").Inc()
	return nil
}

// findAccessPassForUser locates the AccessPass a Pending user latched onto
// at creation time. Users do not carry the pass's pubkey directly (only the
// composer that built the CreateUser instruction knew it), so activation
// re-derives the same (payer, client_ip) match CreateUser validated against.
func (a *Activator) findAccessPassForUser(u *sc.User) *sc.AccessPass {
	for _, pass := range a.mirror.AccessPasses {
		if pass.UserPayer == u.Owner && pass.ClientIp == u.ClientIp {
			return pass
		}
	}
	return nil
}

func (a *Activator) handleMulticastGroup(ctx context.Context, g *sc.MulticastGroup) error {
	if g.Status != sc.MulticastGroupStatusPending {
		return nil
	}
	if !a.markInFlight(g.PubKey) {
		metrics.DuplicateEventSkipped.WithLabelValues("multicast_group").Inc()
		return nil
	}
	defer a.clearInFlight(g.PubKey)

	if err := statemachine.ActivateMulticastGroup(g); err != nil {
		metrics.Errors.WithLabelValues("activate_multicast_group").Inc()
		return fmt.Errorf("activate multicast group %s: %w", solana.PublicKey(g.PubKey), err)
	}

	if _, err := a.cfg.Executor.ExecuteTransaction(ctx, sc.OpActivateMulticastGroup, struct{}{}, a.multicastGroupAccounts(g)); err != nil {
		metrics.Errors.WithLabelValues("activate_multicast_group").Inc()
		return fmt.Errorf("submit activate multicast group %s: %w", solana.PublicKey(g.PubKey), err)
	}
	metrics.ActivationsTotal.WithLabelValues("multicast_group").Inc()
	return nil
}

func findInterfaceByName(d *sc.Device, name string) *sc.Interface {
	for i := range d.Interfaces {
		if d.Interfaces[i].Name == name {
			return &d.Interfaces[i]
		}
	}
	return nil
}

func (a *Activator) deviceAccounts(d *sc.Device) []sc.AccountMeta {
	return []sc.AccountMeta{{PublicKey: solana.PublicKey(d.PubKey), IsWritable: true}}
}

func (a *Activator) linkAccounts(l *sc.Link) []sc.AccountMeta {
	return []sc.AccountMeta{
		{PublicKey: solana.PublicKey(l.PubKey), IsWritable: true},
		{PublicKey: solana.PublicKey(l.SideAPubKey), IsWritable: true},
		{PublicKey: solana.PublicKey(l.SideZPubKey), IsWritable: true},
	}
}

func (a *Activator) userAccounts(u *sc.User) []sc.AccountMeta {
	return []sc.AccountMeta{
		{PublicKey: solana.PublicKey(u.PubKey), IsWritable: true},
		{PublicKey: solana.PublicKey(u.DevicePubKey), IsWritable: true},
	}
}

func (a *Activator) multicastGroupAccounts(g *sc.MulticastGroup) []sc.AccountMeta {
	return []sc.AccountMeta{{PublicKey: solana.PublicKey(g.PubKey), IsWritable: true}}
}
