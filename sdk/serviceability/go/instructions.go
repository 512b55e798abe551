package serviceability

import (
	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

// Opcode identifies an instruction's argument layout and handler. Every
// operation named in §4.4 has one opcode; numeric values are stable once
// assigned since they are part of the on-chain wire format.
type Opcode uint8

const (
	OpCreateLocation Opcode = iota + 1
	OpUpdateLocation
	OpSuspendLocation
	OpResumeLocation
	OpDeleteLocation

	OpCreateExchange
	OpUpdateExchange
	OpDeleteExchange

	OpCreateContributor
	OpUpdateContributor
	OpDeleteContributor

	OpCreateDevice
	OpActivateDevice
	OpUpdateDevice
	OpSuspendDevice
	OpResumeDevice
	OpDeleteDevice
	OpCloseAccountDevice

	OpCreateLink
	OpActivateLink
	OpRejectLink
	OpUpdateLink
	OpDeleteLink
	OpCloseAccountLink

	OpCreateUser
	OpCreateUserAtomic
	OpActivateUser
	OpUpdateUser
	OpSuspendUser
	OpResumeUser
	OpDeleteUser
	OpRequestBanUser
	OpCloseAccountUser

	OpCreateMulticastGroup
	OpActivateMulticastGroup
	OpAddPublisherMulticastGroup
	OpRemovePublisherMulticastGroup
	OpAddSubscriberMulticastGroup
	OpRemoveSubscriberMulticastGroup
	OpDeleteMulticastGroup

	OpSetAccessPass
	OpCheckStatusAccessPass
	OpCheckUserAccessPass
	OpCloseAccessPass

	OpCreateTenant
	OpUpdateTenant
	OpUpdatePaymentStatusTenant
	OpAddAdministratorTenant
	OpRemoveAdministratorTenant
	OpScrubTenantAllowlistAccessPass
	OpDeleteTenant

	OpSetGlobalConfig

	OpInitGlobalState
	OpSetActivatorAuthorityGlobalState
	OpSetAirdropGlobalState
	OpAddFoundationAllowlistGlobalState
	OpRemoveFoundationAllowlistGlobalState
	OpAddQAAllowlistGlobalState
	OpRemoveQAAllowlistGlobalState
)

// NetworkV4 is the wire NetworkV4 representation used by instruction args:
// 4 octets of IPv4 address followed by a 1-byte prefix length, matching the
// field layout already used for Device.DzPrefixes and the allocator's
// BaseNet ([5]byte in state.go).
type NetworkV4 = [5]uint8

// BuildInstructionData serializes opcode_u8 || borsh(args) — the wire
// format every instruction's data_bytes follows (§6). args may be nil for
// opcodes that take no arguments (e.g. CloseAccount variants keyed only by
// account metas).
func BuildInstructionData(op Opcode, args any) ([]byte, error) {
	data := []byte{byte(op)}
	if args == nil {
		return data, nil
	}
	encoded, err := borsh.Serialize(args)
	if err != nil {
		return nil, err
	}
	return append(data, encoded...), nil
}

// CreateDeviceArgs is the argument payload for OpCreateDevice.
type CreateDeviceArgs struct {
	Code          string
	DeviceType    uint8
	PublicIp      [4]byte
	DzPrefixes    []NetworkV4
	MetricsPublisher solana.PublicKey
	MgmtVrf       string
	MaxUsers      uint16
	MaxUnicastUsers   uint16
	MaxMulticastUsers uint16
}

// UpdateDeviceArgs is the argument payload for OpUpdateDevice. Pointer
// fields follow the teacher's "None preserves current value" convention
// (§4.4.3's regression-tested dz_ip rule generalizes to every Update op).
type UpdateDeviceArgs struct {
	Code              *string
	DeviceType        *uint8
	PublicIp          *[4]byte
	DzPrefixes        *[]NetworkV4
	MetricsPublisher  *solana.PublicKey
	ContributorPK     *solana.PublicKey
	LocationPK        *solana.PublicKey
	MgmtVrf           *string
	MaxUsers          *uint16
	MaxUnicastUsers   *uint16
	MaxMulticastUsers *uint16
}

// ActivateDeviceArgs carries the number of per-device resource extension
// accounts (TunnelIds / DzPrefixBlock slots) to allocate while committing
// Pending→Activated.
type ActivateDeviceArgs struct {
	ResourceCount uint8
}

// CreateLinkArgs is the argument payload for OpCreateLink.
type CreateLinkArgs struct {
	Code           string
	ContributorPK  solana.PublicKey
	SideAPK        solana.PublicKey
	SideZPK        solana.PublicKey
	SideAIfaceName string
	SideZIfaceName string
	LinkType       uint8
	Bandwidth      uint64
	Mtu            uint32
	DelayNs        uint64
	JitterNs       uint64
}

// ActivateLinkArgs carries the allocator-assigned tunnel id/subnet.
type ActivateLinkArgs struct {
	TunnelID  uint16
	TunnelNet NetworkV4
}

// CreateUserArgs is the argument payload for OpCreateUser/OpCreateUserAtomic.
type CreateUserArgs struct {
	DevicePK     solana.PublicKey
	UserType     uint8
	CyoaType     uint8
	ClientIp     [4]byte
	TenantPK     solana.PublicKey
	DzPrefixSlot *uint8 // present only for the atomic variant
}

// ActivateUserArgs carries the allocator-assigned resources (§8 property 5).
type ActivateUserArgs struct {
	TunnelID        uint16
	TunnelNet       NetworkV4
	DzIp            [4]byte
	ValidatorPubkey *solana.PublicKey
}

// UpdateUserArgs follows the None-preserves-current-value convention;
// dz_ip == nil must never be mistaken for "set to 0.0.0.0" (§8 property 6).
type UpdateUserArgs struct {
	UserType        *uint8
	CyoaType        *uint8
	DzIp            *[4]byte
	TunnelID        *uint16
	TunnelNet       *NetworkV4
	ValidatorPubkey *solana.PublicKey
}

// SetAccessPassArgs is the argument payload for OpSetAccessPass.
type SetAccessPassArgs struct {
	ClientIp         [4]byte
	UserPayer        solana.PublicKey
	AccessPassType   uint8
	AssociatedPubkey *solana.PublicKey
	OthersTypeName   *string
	OthersKey        *string
	LastAccessEpoch  uint64
	Flags            uint8
}

// CreateMulticastGroupArgs is the argument payload for OpCreateMulticastGroup.
type CreateMulticastGroupArgs struct {
	Code         string
	MaxBandwidth uint64
}

// CreateTenantArgs is the argument payload for OpCreateTenant.
type CreateTenantArgs struct {
	Code string
}

// UpdateTenantArgs is the argument payload for OpUpdateTenant.
type UpdateTenantArgs struct {
	Code          *string
	MetroRouting  *bool
	RouteLiveness *bool
	TokenAccount  *solana.PublicKey
	BillingRate   *uint64
}

// AddRemoveAdministratorArgs is shared by OpAddAdministratorTenant and
// OpRemoveAdministratorTenant.
type AddRemoveAdministratorArgs struct {
	Administrator solana.PublicKey
}

// OpScrubTenantAllowlistAccessPass resets an AccessPass's tenant_allowlist to
// empty; it takes no argument payload, keyed only by the AccessPass and
// Tenant account metas.

// UpdatePaymentStatusArgs is the argument payload for OpUpdatePaymentStatusTenant.
type UpdatePaymentStatusArgs struct {
	PaymentStatus           uint8
	LastDeductionDzEpoch    *uint64
}

// SetGlobalConfigArgs is the argument payload for OpSetGlobalConfig.
type SetGlobalConfigArgs struct {
	LocalASN                uint32
	RemoteASN               uint32
	DeviceTunnelBlock       NetworkV4
	UserTunnelBlock         NetworkV4
	MulticastGroupBlock     NetworkV4
	MulticastPublisherBlock NetworkV4
}

// AllowlistMutationArgs is shared by the GlobalState foundation/qa allowlist
// add/remove opcodes.
type AllowlistMutationArgs struct {
	Pubkey solana.PublicKey
}

// InitGlobalStateArgs is the argument payload for OpInitGlobalState.
type InitGlobalStateArgs struct {
	ActivatorAuthorityPK solana.PublicKey
	SentinelAuthorityPK  solana.PublicKey
}

// SetActivatorAuthorityArgs is the argument payload for
// OpSetActivatorAuthorityGlobalState.
type SetActivatorAuthorityArgs struct {
	ActivatorAuthorityPK solana.PublicKey
	SentinelAuthorityPK  solana.PublicKey
	HealthOraclePK       solana.PublicKey
}

// SetAirdropArgs is the argument payload for OpSetAirdropGlobalState.
type SetAirdropArgs struct {
	ContributorAirdropLamports uint64
	UserAirdropLamports        uint64
}
