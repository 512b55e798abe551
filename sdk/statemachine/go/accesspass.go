package statemachine

import (
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

// SetAccessPassArgs mirrors the on-chain instruction payload: Set is a
// single idempotent upsert, unlike every other entity's separate
// Create/Update pair (§4.4.5).
type SetAccessPassArgs struct {
	ClientIp         [4]uint8
	UserPayer        [32]byte
	AccessPassType   sc.AccessPassTypeTag
	AssociatedPubkey *[32]byte
	OthersTypeName   *string
	OthersKey        *string
	LastAccessEpoch  uint64
	Flags            uint8
}

// SetAccessPass creates a new AccessPass when existing is nil, or applies
// the same field set onto an already-fetched one otherwise. A connected
// pass (ConnectionCount > 0) cannot have its IS_DYNAMIC flag toggled off,
// since that would orphan the latched client_ip the running Users depend
// on.
func SetAccessPass(existing *sc.AccessPass, args SetAccessPassArgs) (*sc.AccessPass, error) {
	pass := existing
	if pass == nil {
		pass = &sc.AccessPass{Status: sc.AccessPassStatusRequested}
	} else if pass.ConnectionCount > 0 && pass.IsDynamic() && args.Flags&sc.AccessPassFlagIsDynamic == 0 {
		return nil, sc.ErrUnauthorized
	}

	pass.ClientIp = args.ClientIp
	pass.UserPayer = args.UserPayer
	pass.AccessPassTypeTag = args.AccessPassType
	pass.LastAccessEpoch = args.LastAccessEpoch
	pass.Flags = args.Flags
	if args.AssociatedPubkey != nil {
		pass.AssociatedPubkey = *args.AssociatedPubkey
	}
	if args.OthersTypeName != nil {
		pass.OthersTypeName = *args.OthersTypeName
	}
	if args.OthersKey != nil {
		pass.OthersKey = *args.OthersKey
	}
	return pass, nil
}

// CloseAccessPass requires no User still holds a connection through this
// pass (§4.4.5); the caller is responsible for having already disconnected
// every User that referenced it.
func CloseAccessPass(pass *sc.AccessPass) error {
	if pass.ConnectionCount != 0 {
		return sc.ErrReferenceCountNotZero
	}
	return nil
}

// AddTenantToAllowlist and RemoveTenantFromAllowlist maintain the
// tenant_allowlist a User.Create checks before allowing a tenant_pk (§4.4.3,
// §8 property 11).
func AddTenantToAllowlist(pass *sc.AccessPass, tenant [32]byte) error {
	if containsPubkey(pass.TenantAllowlist, tenant) {
		return nil
	}
	pass.TenantAllowlist = append(pass.TenantAllowlist, tenant)
	return nil
}

func RemoveTenantFromAllowlist(pass *sc.AccessPass, tenant [32]byte) error {
	if !containsPubkey(pass.TenantAllowlist, tenant) {
		return sc.ErrTenantNotInAccessPassAllowlist
	}
	pass.TenantAllowlist = removePubkey(pass.TenantAllowlist, tenant)
	return nil
}
