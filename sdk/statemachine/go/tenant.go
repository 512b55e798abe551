package statemachine

import (
	"github.com/dz-network/doublezero/sdk/allocator/go/idalloc"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

// CreateTenantArgs is the validated argument set for a Tenant create
// (§4.4.6). vrfIds allocates the tenant's VRF identifier from the
// program-wide vrf_id range.
type CreateTenantArgs struct {
	Payer        [32]byte
	Code         string
	MetroRouting bool
	TokenAccount [32]byte
}

func CreateTenant(args CreateTenantArgs, vrfIds *idalloc.Allocator, vrfIdsBitmap []byte) (*sc.Tenant, error) {
	if len(args.Code) == 0 || len(args.Code) > 32 {
		return nil, sc.ErrCodeTooLong
	}
	vrfID, err := vrfIds.NextAvailable(vrfIdsBitmap)
	if err != nil {
		return nil, err
	}
	return &sc.Tenant{
		Owner:         args.Payer,
		Code:          args.Code,
		VrfId:         vrfID,
		MetroRouting:  args.MetroRouting,
		TokenAccount:  args.TokenAccount,
		PaymentStatus: sc.TenantPaymentStatusPaid,
	}, nil
}

// UpdateTenantArgs follows the None-preserves-current-value convention.
type UpdateTenantArgs struct {
	Code          *string
	MetroRouting  *bool
	RouteLiveness *bool
	TokenAccount  *[32]byte
	BillingRate   *uint64
}

func UpdateTenant(t *sc.Tenant, args UpdateTenantArgs) error {
	if args.Code != nil {
		if len(*args.Code) == 0 || len(*args.Code) > 32 {
			return sc.ErrCodeTooLong
		}
		t.Code = *args.Code
	}
	if args.MetroRouting != nil {
		t.MetroRouting = *args.MetroRouting
	}
	if args.RouteLiveness != nil {
		t.RouteLiveness = *args.RouteLiveness
	}
	if args.TokenAccount != nil {
		t.TokenAccount = *args.TokenAccount
	}
	if args.BillingRate != nil {
		t.BillingRate = *args.BillingRate
	}
	return nil
}

// UpdateTenantPaymentStatus flips Paid↔Delinquent, stamping the epoch a
// deduction was last attempted so the billing cron can tell whether this
// epoch's deduction already ran (§4.4.6).
func UpdateTenantPaymentStatus(t *sc.Tenant, status sc.TenantPaymentStatus, currentEpoch uint64) error {
	t.PaymentStatus = status
	t.BillingLastDeductionDzEpoch = currentEpoch
	return nil
}

// AddAdministrator and RemoveAdministrator maintain the tenant's
// administrator list with duplicate/missing guards (§4.4.6).
func AddAdministrator(t *sc.Tenant, admin [32]byte) error {
	if containsPubkey(t.Administrators, admin) {
		return sc.ErrAdministratorAlreadyExists
	}
	t.Administrators = append(t.Administrators, admin)
	return nil
}

func RemoveAdministrator(t *sc.Tenant, admin [32]byte) error {
	if !containsPubkey(t.Administrators, admin) {
		return sc.ErrAdministratorNotFound
	}
	t.Administrators = removePubkey(t.Administrators, admin)
	return nil
}

// DeleteTenant requires reference_count == 0 — every User pinned to this
// tenant must already be gone (§4.4.6). The composite cascade-delete that
// drives users to zero first lives in the operator command surface, not
// here: this function only asserts the final precondition.
func DeleteTenant(t *sc.Tenant) error {
	if t.ReferenceCount != 0 {
		return sc.ErrReferenceCountNotZero
	}
	return nil
}

// CloseAccountTenant releases the tenant's vrf_id back to the pool.
func CloseAccountTenant(t *sc.Tenant, vrfIds *idalloc.Allocator, vrfIdsBitmap []byte) error {
	return vrfIds.Unassign(vrfIdsBitmap, t.VrfId)
}
