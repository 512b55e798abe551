package statemachine

import (
	"testing"

	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/stretchr/testify/require"
)

func TestSetAccessPassCreatesWhenAbsent(t *testing.T) {
	payer := [32]byte{1}
	pass, err := SetAccessPass(nil, SetAccessPassArgs{
		UserPayer:       payer,
		AccessPassType:  sc.AccessPassTypePrepaid,
		LastAccessEpoch: 10,
		Flags:           sc.AccessPassFlagIsDynamic,
	})
	require.NoError(t, err)
	require.Equal(t, payer, pass.UserPayer)
	require.True(t, pass.IsDynamic())
	require.Equal(t, sc.AccessPassStatusRequested, pass.Status)
}

func TestSetAccessPassUpdatesExisting(t *testing.T) {
	pass := &sc.AccessPass{UserPayer: [32]byte{1}, LastAccessEpoch: 10}
	updated, err := SetAccessPass(pass, SetAccessPassArgs{UserPayer: [32]byte{1}, LastAccessEpoch: 20})
	require.NoError(t, err)
	require.Same(t, pass, updated)
	require.EqualValues(t, 20, pass.LastAccessEpoch)
}

func TestSetAccessPassRejectsUndynamicizingConnectedPass(t *testing.T) {
	pass := &sc.AccessPass{ConnectionCount: 2, Flags: sc.AccessPassFlagIsDynamic}
	_, err := SetAccessPass(pass, SetAccessPassArgs{Flags: 0})
	require.ErrorIs(t, err, sc.ErrUnauthorized)
}

func TestCloseAccessPassRequiresZeroConnections(t *testing.T) {
	pass := &sc.AccessPass{ConnectionCount: 1}
	require.ErrorIs(t, CloseAccessPass(pass), sc.ErrReferenceCountNotZero)

	pass.ConnectionCount = 0
	require.NoError(t, CloseAccessPass(pass))
}

func TestTenantAllowlistRoundTrip(t *testing.T) {
	pass := &sc.AccessPass{}
	tenant := [32]byte{3}
	require.NoError(t, AddTenantToAllowlist(pass, tenant))
	require.Contains(t, pass.TenantAllowlist, tenant)

	require.NoError(t, RemoveTenantFromAllowlist(pass, tenant))
	require.NotContains(t, pass.TenantAllowlist, tenant)
	require.ErrorIs(t, RemoveTenantFromAllowlist(pass, tenant), sc.ErrTenantNotInAccessPassAllowlist)
}
