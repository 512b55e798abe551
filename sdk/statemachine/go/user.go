package statemachine

import (
	"net"

	"github.com/dz-network/doublezero/sdk/allocator/go/idalloc"
	"github.com/dz-network/doublezero/sdk/allocator/go/ipalloc"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

// CreateUserArgs is the validated argument set for a User create (§4.4.3).
type CreateUserArgs struct {
	Payer    [32]byte
	UserType sc.UserUserType
	CyoaType sc.CyoaType
	ClientIp [4]uint8
	TenantPK [32]byte
	Bypass   bool // payer is foundation- or qa-allowlisted
}

// CreateUser validates and applies a User create. The caller has already
// resolved the backing AccessPass: either the one at pda(client_ip, payer)
// or, if IS_DYNAMIC, the one at pda(0.0.0.0, payer). pass is mutated in
// place for the IS_DYNAMIC latching rule (§8 property 11).
func CreateUser(device *sc.Device, pass *sc.AccessPass, args CreateUserArgs) (*sc.User, error) {
	if pass.UserPayer != args.Payer {
		return nil, sc.ErrAccessPassUnauthorized
	}

	if pass.IsDynamic() && isZeroIP(pass.ClientIp) {
		pass.ClientIp = args.ClientIp
	} else if !pass.AllowMultipleIp() && pass.ClientIp != args.ClientIp {
		return nil, sc.ErrUnauthorized
	}

	if len(pass.TenantAllowlist) > 0 {
		if !containsPubkey(pass.TenantAllowlist, args.TenantPK) {
			return nil, sc.ErrTenantNotInAccessPassAllowlist
		}
	} else if args.TenantPK != zeroPubkey {
		return nil, sc.ErrTenantNotInAccessPassAllowlist
	}

	if !args.Bypass && device.Status != sc.DeviceStatusActivated {
		return nil, sc.ErrInvalidStatus
	}

	if !args.Bypass {
		if device.UsersCount >= device.MaxUsers {
			return nil, sc.ErrMaxUsersExceeded
		}
		if args.UserType == sc.UserTypeMulticast {
			if device.MulticastUsersCount >= device.MaxMulticastUsers {
				return nil, sc.ErrMaxMulticastUsersExceeded
			}
		} else if device.UnicastUsersCount >= device.MaxUnicastUsers {
			return nil, sc.ErrMaxUnicastUsersExceeded
		}
	}

	pass.ConnectionCount++
	pass.Status = sc.AccessPassStatusConnected

	device.ReferenceCount++
	device.UsersCount++
	if args.UserType == sc.UserTypeMulticast {
		device.MulticastUsersCount++
	} else {
		device.UnicastUsersCount++
	}

	u := &sc.User{
		Owner:        args.Payer,
		UserType:     args.UserType,
		TenantPubKey: args.TenantPK,
		DevicePubKey: device.PubKey,
		CyoaType:     args.CyoaType,
		ClientIp:     args.ClientIp,
		Status:       sc.UserStatusPending,
	}
	if pass.AccessPassTypeTag == sc.AccessPassTypeSolanaValidator {
		u.ValidatorPubKey = pass.AssociatedPubkey
	}
	return u, nil
}

// ActivateUserArgs carries the activator-assigned resources (§8 property 5).
type ActivateUserArgs struct {
	TunnelID        uint16
	TunnelNet       [5]uint8
	DzIp            [4]uint8
	ValidatorPubkey *[32]byte
}

// ActivateUser applies the non-atomic activation path: Pending→Activated,
// unless the backing pass is Expired, in which case the user is placed in
// OutOfCredits instead (§4.4.3).
func ActivateUser(u *sc.User, pass *sc.AccessPass, args ActivateUserArgs) error {
	if u.Status != sc.UserStatusPending {
		return sc.ErrInvalidStatus
	}
	if pass.Status == sc.AccessPassStatusExpired {
		u.Status = sc.UserStatusOutOfCredits
		return nil
	}
	u.TunnelId = args.TunnelID
	u.TunnelNet = args.TunnelNet
	u.DzIp = args.DzIp
	if args.ValidatorPubkey != nil {
		u.ValidatorPubKey = *args.ValidatorPubkey
	}
	u.Status = sc.UserStatusActivated
	return nil
}

// CreateAndActivateUser performs the atomic create+activate path
// (dz_prefix_count > 0 variant, §4.4.3): allocates tunnel_net from
// userTunnelBlock, tunnel_id from deviceTunnelIDs, and dz_ip from
// dzPrefixBlock, then runs the same activation as ActivateUser.
func CreateAndActivateUser(device *sc.Device, pass *sc.AccessPass, args CreateUserArgs, deviceTunnelIDs *idalloc.Allocator, deviceTunnelIDsBitmap []byte, userTunnelBlock *ipalloc.Allocator, userTunnelBitmap []byte, dzPrefixBlock *ipalloc.Allocator, dzPrefixBitmap []byte) (*sc.User, error) {
	u, err := CreateUser(device, pass, args)
	if err != nil {
		return nil, err
	}

	tunnelID, err := deviceTunnelIDs.NextAvailable(deviceTunnelIDsBitmap)
	if err != nil {
		return nil, err
	}
	tunnelNet, ok := userTunnelBlock.Allocate(userTunnelBitmap, 2)
	if !ok {
		_ = deviceTunnelIDs.Unassign(deviceTunnelIDsBitmap, tunnelID)
		return nil, ipalloc.ErrOutOfRange
	}
	allocated, ok := dzPrefixBlock.Allocate(dzPrefixBitmap, 1)
	if !ok {
		_ = deviceTunnelIDs.Unassign(deviceTunnelIDsBitmap, tunnelID)
		userTunnelBlock.Deallocate(userTunnelBitmap, tunnelNet)
		return nil, ipalloc.ErrOutOfRange
	}
	dzIP := [4]uint8{allocated[0], allocated[1], allocated[2], allocated[3]}

	return u, ActivateUser(u, pass, ActivateUserArgs{
		TunnelID:  tunnelID,
		TunnelNet: [5]uint8(tunnelNet),
		DzIp:      dzIP,
	})
}

// UpdateUserArgs follows the None-preserves-current-value convention; a nil
// DzIp must never be mistaken for "set to 0.0.0.0" (§8 property 6).
type UpdateUserArgs struct {
	UserType        *sc.UserUserType
	CyoaType        *sc.CyoaType
	DzIp            *[4]uint8
	TunnelID        *uint16
	TunnelNet       *[5]uint8
	ValidatorPubkey *[32]byte
}

func UpdateUser(u *sc.User, args UpdateUserArgs) error {
	if args.UserType != nil {
		u.UserType = *args.UserType
	}
	if args.CyoaType != nil {
		u.CyoaType = *args.CyoaType
	}
	if args.DzIp != nil {
		u.DzIp = *args.DzIp
	}
	if args.TunnelID != nil {
		u.TunnelId = *args.TunnelID
	}
	if args.TunnelNet != nil {
		u.TunnelNet = *args.TunnelNet
	}
	if args.ValidatorPubkey != nil {
		u.ValidatorPubKey = *args.ValidatorPubkey
	}
	return nil
}

// SuspendUser and ResumeUser implement spec.md §4.4.3's Activated↔Suspended
// pair against the live UserStatusSuspended discriminant (9) rather than the
// deprecated, never-emitted discriminant 2 the wire format still reserves.
// ResumeUser re-checks the backing AccessPass the same way ActivateUser
// does: an Expired pass sends the user to OutOfCredits instead of back to
// Activated.
func SuspendUser(u *sc.User) error {
	if u.Status != sc.UserStatusActivated {
		return sc.ErrInvalidStatus
	}
	u.Status = sc.UserStatusSuspended
	return nil
}

func ResumeUser(u *sc.User, pass *sc.AccessPass) error {
	if u.Status != sc.UserStatusSuspended {
		return sc.ErrInvalidStatus
	}
	if pass.Status == sc.AccessPassStatusExpired {
		u.Status = sc.UserStatusOutOfCredits
		return nil
	}
	u.Status = sc.UserStatusActivated
	return nil
}

// DeleteUser transitions Activated→Deleting.
func DeleteUser(u *sc.User) error {
	if u.Status != sc.UserStatusActivated {
		return sc.ErrInvalidStatus
	}
	u.Status = sc.UserStatusDeleting
	return nil
}

// RequestBanUser transitions Activated→PendingBan.
func RequestBanUser(u *sc.User) error {
	if u.Status != sc.UserStatusActivated {
		return sc.ErrInvalidStatus
	}
	u.Status = sc.UserStatusPendingBan
	return nil
}

// CloseAccountUser finalizes Deleting→closed (or PendingBan→Banned for a
// ban), deallocating resources only when the user actually reached
// activation: dz_ip ≠ client_ip and tunnel_net.ip() is link-local guards
// against closing a never-activated record (§4.4.3).
func CloseAccountUser(u *sc.User, device *sc.Device, ban bool, deviceTunnelIDs *idalloc.Allocator, deviceTunnelIDsBitmap []byte, userTunnelBlock *ipalloc.Allocator, userTunnelBitmap []byte, dzPrefixBlock *ipalloc.Allocator, dzPrefixBitmap []byte) error {
	if ban {
		if u.Status != sc.UserStatusPendingBan {
			return sc.ErrInvalidStatus
		}
	} else if u.Status != sc.UserStatusDeleting {
		return sc.ErrInvalidStatus
	}

	wasActivated := u.DzIp != u.ClientIp && isLinkLocal([4]uint8(u.TunnelNet[:4]))
	if wasActivated {
		if u.TunnelId != 0 {
			_ = deviceTunnelIDs.Unassign(deviceTunnelIDsBitmap, u.TunnelId)
		}
		if u.TunnelNet != ([5]uint8{}) {
			userTunnelBlock.Deallocate(userTunnelBitmap, ipalloc.Network(u.TunnelNet))
		}
		dzPrefixBlock.Deallocate(dzPrefixBitmap, ipalloc.NewNetwork(net.IP(u.DzIp[:]), 32))
	}

	device.ReferenceCount--
	device.UsersCount--
	if u.UserType == sc.UserTypeMulticast {
		device.MulticastUsersCount--
	} else {
		device.UnicastUsersCount--
	}
	if ban {
		u.Status = sc.UserStatusBanned
	}
	return nil
}
