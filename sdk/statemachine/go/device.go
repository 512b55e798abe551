package statemachine

import (
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

// DeviceCounterparts bundles the entities whose reference counts move with
// a Device's lifecycle (§3 "Ownership and lifecycle").
type DeviceCounterparts struct {
	Contributor *sc.Contributor
	Location    *sc.Location
	Exchange    *sc.Exchange
}

// CreateDeviceArgs is the validated, already-decoded argument set for a
// Device create.
type CreateDeviceArgs struct {
	Payer      [32]byte
	Code       string
	PublicIp   [4]uint8
	DzPrefixes [][5]uint8
}

// CreateDevice validates and applies a Device create (§4.4.1). The payer
// must be in the foundation allowlist: per DESIGN.md's resolution of the
// GlobalState.device_allowlist/user_allowlist deprecation, this repo
// follows the teacher's on-chain state, which no longer carries a live
// device_allowlist — only FoundationAllowlist gates Device.Create.
func CreateDevice(gs *sc.GlobalState, counterparts DeviceCounterparts, args CreateDeviceArgs) (*sc.Device, error) {
	if !isFoundation(gs, args.Payer) {
		return nil, sc.ErrNotAllowed
	}
	if len(args.Code) == 0 || len(args.Code) > 32 {
		return nil, sc.ErrCodeTooLong
	}
	if !isGlobalUnicast(args.PublicIp) {
		return nil, sc.ErrInvalidPublicIp
	}
	for _, prefix := range args.DzPrefixes {
		var net4 [4]uint8
		copy(net4[:], prefix[:4])
		if networkContains(net4, prefix[4], args.PublicIp) {
			return nil, sc.ErrInvalidPublicIp
		}
	}

	counterparts.Contributor.ReferenceCount++
	counterparts.Location.ReferenceCount++
	counterparts.Exchange.ReferenceCount++

	return &sc.Device{
		Owner:      args.Payer,
		Status:     sc.DeviceStatusPending,
		Code:       args.Code,
		PublicIp:   args.PublicIp,
		DzPrefixes: args.DzPrefixes,
	}, nil
}

// ActivateDevice transitions Pending→Activated (§4.4.1). It has no
// Pending→Rejected path: DeviceDesiredStatus has no rejecting value and is
// not consulted here. Resource-account creation (TunnelIds,
// DzPrefixBlock) is a ledger-write concern driven by the activator (C6)
// around this call, not a bitmap mutation this function performs.
func ActivateDevice(d *sc.Device) error {
	if d.Status != sc.DeviceStatusPending {
		return sc.ErrInvalidStatus
	}
	d.Status = sc.DeviceStatusActivated
	return nil
}

// UpdateDeviceArgs carries optional fields; nil preserves the current
// value, matching the None-preserves-current-value convention used
// throughout §4.4 (most visibly tested for User.dz_ip in §8 property 6).
type UpdateDeviceArgs struct {
	Code         *string
	PublicIp     *[4]uint8
	DzPrefixes   *[][5]uint8
	MgmtVrf      *string
	MaxUsers     *uint16
	NewLocation  *sc.Location // non-nil only when location_pk changes
	OldLocation  *sc.Location // must be set whenever NewLocation is set
}

// UpdateDevice applies an Update (§4.4.1). If NewLocation is set, the old
// Location's reference count is decremented and the new one incremented
// in the same call, mirroring the on-chain handler's single-transaction
// atomicity.
func UpdateDevice(d *sc.Device, args UpdateDeviceArgs) error {
	publicIP := d.PublicIp
	if args.PublicIp != nil {
		publicIP = *args.PublicIp
	}
	dzPrefixes := d.DzPrefixes
	if args.DzPrefixes != nil {
		dzPrefixes = *args.DzPrefixes
	}
	for _, prefix := range dzPrefixes {
		var net4 [4]uint8
		copy(net4[:], prefix[:4])
		if networkContains(net4, prefix[4], publicIP) {
			return sc.ErrInvalidPublicIp
		}
	}

	if args.Code != nil {
		if len(*args.Code) == 0 || len(*args.Code) > 32 {
			return sc.ErrCodeTooLong
		}
		d.Code = *args.Code
	}
	d.PublicIp = publicIP
	d.DzPrefixes = dzPrefixes
	if args.MgmtVrf != nil {
		d.MgmtVrf = *args.MgmtVrf
	}
	if args.MaxUsers != nil {
		d.MaxUsers = *args.MaxUsers
	}
	if args.NewLocation != nil {
		if args.OldLocation == nil {
			return sc.ErrInvalidLocation
		}
		args.OldLocation.ReferenceCount--
		args.NewLocation.ReferenceCount++
		d.LocationPubKey = args.NewLocation.PubKey
	}
	return nil
}

// SuspendDevice and ResumeDevice map spec.md's Suspend/Resume bullet onto
// the teacher's DeviceStatusDrained/DeviceStatusActivated pair — the
// teacher's on-chain DeviceStatus enum has no separate "Suspended" slot,
// only Drained, which is the operational analogue (traffic withdrawn,
// record retained, reversible).
func SuspendDevice(d *sc.Device) error {
	if d.Status != sc.DeviceStatusActivated {
		return sc.ErrInvalidStatus
	}
	d.Status = sc.DeviceStatusDrained
	return nil
}

func ResumeDevice(d *sc.Device) error {
	if d.Status != sc.DeviceStatusDrained {
		return sc.ErrInvalidStatus
	}
	d.Status = sc.DeviceStatusActivated
	return nil
}

// DeleteDevice transitions Activated→Deleting (§4.4.1): requires no
// attached users and no referencing links.
func DeleteDevice(d *sc.Device) error {
	if d.Status != sc.DeviceStatusActivated {
		return sc.ErrInvalidStatus
	}
	if d.UsersCount != 0 {
		return sc.ErrMaxUsersExceeded
	}
	if d.ReferenceCount != 0 {
		return sc.ErrReferenceCountNotZero
	}
	d.Status = sc.DeviceStatusDeleting
	return nil
}

// CloseAccountDevice finalizes Deleting→closed, decrementing the
// counterparts' reference counts. Deallocating the device's attached
// ResourceExtension accounts is the activator's job (it owns the bitmap
// mutations); this function only asserts the precondition and updates the
// counterparts that this package is authoritative over.
func CloseAccountDevice(d *sc.Device, counterparts DeviceCounterparts) error {
	if d.Status != sc.DeviceStatusDeleting {
		return sc.ErrInvalidStatus
	}
	counterparts.Contributor.ReferenceCount--
	counterparts.Location.ReferenceCount--
	counterparts.Exchange.ReferenceCount--
	return nil
}

// networkContains reports whether ip falls inside the CIDR (net4, prefixLen).
func networkContains(net4 [4]uint8, prefixLen uint8, ip [4]uint8) bool {
	if prefixLen > 32 {
		return false
	}
	var mask uint32 = 0xFFFFFFFF
	if prefixLen < 32 {
		mask = ^(uint32(1)<<(32-prefixLen) - 1)
	}
	toUint32 := func(b [4]uint8) uint32 {
		return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	}
	return toUint32(net4)&mask == toUint32(ip)&mask
}
