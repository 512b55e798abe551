package statemachine

import (
	"testing"

	"github.com/dz-network/doublezero/sdk/allocator/go/idalloc"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/stretchr/testify/require"
)

func TestCreateTenantAllocatesVrfId(t *testing.T) {
	vrfIds := idalloc.New(1, 4096)
	bitmap := make([]byte, idalloc.RequiredBitmapSize(1, 4096))

	tenant, err := CreateTenant(CreateTenantArgs{Payer: [32]byte{1}, Code: "acme"}, vrfIds, bitmap)
	require.NoError(t, err)
	require.EqualValues(t, 1, tenant.VrfId)
	require.Equal(t, sc.TenantPaymentStatusPaid, tenant.PaymentStatus)
}

func TestAddAdministratorRejectsDuplicate(t *testing.T) {
	tenant := &sc.Tenant{}
	admin := [32]byte{9}
	require.NoError(t, AddAdministrator(tenant, admin))
	require.ErrorIs(t, AddAdministrator(tenant, admin), sc.ErrAdministratorAlreadyExists)
}

func TestRemoveAdministratorRequiresExisting(t *testing.T) {
	tenant := &sc.Tenant{}
	require.ErrorIs(t, RemoveAdministrator(tenant, [32]byte{9}), sc.ErrAdministratorNotFound)
}

func TestDeleteTenantRequiresZeroReferenceCount(t *testing.T) {
	tenant := &sc.Tenant{ReferenceCount: 2}
	require.ErrorIs(t, DeleteTenant(tenant), sc.ErrReferenceCountNotZero)

	tenant.ReferenceCount = 0
	require.NoError(t, DeleteTenant(tenant))
}

func TestUpdateTenantPaymentStatusStampsEpoch(t *testing.T) {
	tenant := &sc.Tenant{PaymentStatus: sc.TenantPaymentStatusPaid}
	err := UpdateTenantPaymentStatus(tenant, sc.TenantPaymentStatusDelinquent, 500)
	require.NoError(t, err)
	require.Equal(t, sc.TenantPaymentStatusDelinquent, tenant.PaymentStatus)
	require.EqualValues(t, 500, tenant.BillingLastDeductionDzEpoch)
}
