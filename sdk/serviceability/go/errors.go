package serviceability

import "fmt"

// ErrorKind is the program's error taxonomy. Each kind maps to a stable
// numeric code surfaced on-chain as ProgramError::Custom(code); Activator
// and command-surface callers decode a transaction failure's Custom(code)
// back into a Kind with FromCode.
type ErrorKind uint32

const (
	_ ErrorKind = iota // 0 reserved: an opaque Custom(n) with no known mapping

	ErrInvalidOwnerPubkey
	ErrInvalidExchangePubkey
	ErrInvalidDevicePubkey
	ErrInvalidLocationPubkey
	ErrInvalidDeviceAPubkey
	ErrInvalidDeviceZPubkey
	ErrInvalidStatus
	ErrNotAllowed
	ErrInvalidAccountType
	ErrInvalidContributorPubkey
	ErrInvalidInterfaceVersion
	ErrInvalidInterfaceName
	ErrReferenceCountNotZero
	ErrInvalidContributor
	ErrInvalidInterfaceZForExternal
	ErrInvalidIndex
	ErrDeviceAlreadySet
	ErrDeviceNotSet
	ErrInvalidAccountCode
	ErrMaxUsersExceeded
	ErrInvalidLastAccessEpoch
	ErrUnauthorized
	ErrInvalidSolanaValidatorPubkey
	ErrInterfaceNotFound
	ErrAccessPassUnauthorized
	ErrInvalidClientIp
	ErrInvalidDzIp
	ErrInvalidTunnelNet
	ErrInvalidTunnelId
	ErrInvalidTunnelIp
	ErrInvalidBandwidth
	ErrInvalidDelay
	ErrInvalidJitter
	ErrCodeTooLong
	ErrNoDzPrefixes
	ErrInvalidLocation
	ErrInvalidExchange
	ErrInvalidDzPrefix
	ErrNameTooLong
	ErrInvalidLatitude
	ErrInvalidLongitude
	ErrInvalidLocId
	ErrInvalidCountryCode
	ErrInvalidLocalAsn
	ErrInvalidRemoteAsn
	ErrInvalidMtu
	ErrInvalidInterfaceIp
	ErrInvalidInterfaceIpNet
	ErrInvalidVlanId
	ErrInvalidMaxBandwidth
	ErrInvalidMulticastIp
	ErrInvalidAccountOwner
	ErrAccessPassNotFound
	ErrUserAccountNotFound
	ErrInvalidBgpCommunity
	ErrInterfaceAlreadyExists
	ErrInvalidPublicIp // 57

	// Extension codes (58+): named in the error taxonomy but not present in
	// the variant table above; assigned here in the order they're introduced.
	ErrInvalidUserPubkey
	ErrInvalidTenantPubkey
	ErrMaxUnicastUsersExceeded
	ErrMaxMulticastUsersExceeded
	ErrSamplesAccountFull
	ErrMaxTargetsReached
	ErrTenantNotInAccessPassAllowlist
	ErrAdministratorAlreadyExists
	ErrAdministratorNotFound
	ErrInvalidTunnelEndpoint
)

var errorMessages = map[ErrorKind]string{
	ErrInvalidOwnerPubkey:             "only the owner can perform this action",
	ErrInvalidExchangePubkey:          "pubkey does not correspond to an Exchange",
	ErrInvalidDevicePubkey:            "pubkey does not correspond to a Device",
	ErrInvalidLocationPubkey:          "pubkey does not correspond to a Location",
	ErrInvalidDeviceAPubkey:           "pubkey does not correspond to side A's Device",
	ErrInvalidDeviceZPubkey:           "pubkey does not correspond to side Z's Device",
	ErrInvalidStatus:                  "invalid status for this transition",
	ErrNotAllowed:                     "not allowed to execute this action",
	ErrInvalidAccountType:             "invalid account type",
	ErrInvalidContributorPubkey:       "pubkey does not correspond to a Contributor",
	ErrInvalidInterfaceVersion:        "invalid interface version",
	ErrInvalidInterfaceName:           "invalid interface name",
	ErrReferenceCountNotZero:          "reference count is not zero",
	ErrInvalidContributor:             "invalid contributor",
	ErrInvalidInterfaceZForExternal:   "side Z interface name must be empty for an external link",
	ErrInvalidIndex:                   "invalid index",
	ErrDeviceAlreadySet:               "device already set",
	ErrDeviceNotSet:                   "device not set",
	ErrInvalidAccountCode:             "invalid account code",
	ErrMaxUsersExceeded:               "max users exceeded",
	ErrInvalidLastAccessEpoch:         "invalid last access epoch",
	ErrUnauthorized:                   "unauthorized",
	ErrInvalidSolanaValidatorPubkey:   "invalid Solana validator pubkey",
	ErrInterfaceNotFound:              "interface not found",
	ErrAccessPassUnauthorized:         "access pass is not valid for this request",
	ErrInvalidClientIp:                "invalid client IP",
	ErrInvalidDzIp:                    "invalid DZ IP",
	ErrInvalidTunnelNet:               "invalid tunnel network",
	ErrInvalidTunnelId:                "invalid tunnel ID",
	ErrInvalidTunnelIp:                "invalid tunnel IP",
	ErrInvalidBandwidth:               "invalid bandwidth",
	ErrInvalidDelay:                   "invalid delay",
	ErrInvalidJitter:                  "invalid jitter",
	ErrCodeTooLong:                    "code too long",
	ErrNoDzPrefixes:                   "no DZ prefixes",
	ErrInvalidLocation:                "invalid location",
	ErrInvalidExchange:                "invalid exchange",
	ErrInvalidDzPrefix:                "invalid DZ prefix",
	ErrNameTooLong:                    "name too long",
	ErrInvalidLatitude:                "invalid latitude",
	ErrInvalidLongitude:               "invalid longitude",
	ErrInvalidLocId:                   "invalid location ID",
	ErrInvalidCountryCode:             "invalid country code",
	ErrInvalidLocalAsn:                "invalid local ASN",
	ErrInvalidRemoteAsn:               "invalid remote ASN",
	ErrInvalidMtu:                     "invalid MTU",
	ErrInvalidInterfaceIp:             "invalid interface IP",
	ErrInvalidInterfaceIpNet:          "invalid interface IP net",
	ErrInvalidVlanId:                  "invalid VLAN ID",
	ErrInvalidMaxBandwidth:            "invalid max bandwidth",
	ErrInvalidMulticastIp:             "invalid multicast IP",
	ErrInvalidAccountOwner:            "invalid account owner",
	ErrAccessPassNotFound:             "access pass not found",
	ErrUserAccountNotFound:            "user account not found",
	ErrInvalidBgpCommunity:            "invalid BGP community",
	ErrInterfaceAlreadyExists:         "interface already exists",
	ErrInvalidPublicIp:                "public IP conflicts with a DZ prefix",
	ErrInvalidUserPubkey:              "pubkey does not correspond to a User",
	ErrInvalidTenantPubkey:            "pubkey does not correspond to a Tenant",
	ErrMaxUnicastUsersExceeded:        "max unicast users exceeded",
	ErrMaxMulticastUsersExceeded:      "max multicast users exceeded",
	ErrSamplesAccountFull:             "samples account is full",
	ErrMaxTargetsReached:              "max targets reached",
	ErrTenantNotInAccessPassAllowlist: "tenant not in access pass allowlist",
	ErrAdministratorAlreadyExists:     "administrator already exists",
	ErrAdministratorNotFound:          "administrator not found",
	ErrInvalidTunnelEndpoint:          "invalid tunnel endpoint",
}

func (k ErrorKind) Error() string {
	if msg, ok := errorMessages[k]; ok {
		return msg
	}
	return fmt.Sprintf("custom program error: 0x%x", uint32(k))
}

// Code returns the numeric ProgramError::Custom(code) value for this kind.
func (k ErrorKind) Code() uint32 { return uint32(k) }

// FromCode decodes a raw Custom(code) value from a failed transaction back
// into a named ErrorKind. Unknown codes are returned unmodified so callers
// can still log the raw number.
func FromCode(code uint32) ErrorKind { return ErrorKind(code) }
