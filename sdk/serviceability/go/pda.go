package serviceability

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var (
	seedPrefix                  = []byte("doublezero")
	seedGlobalState             = []byte("globalstate")
	seedGlobalConfig            = []byte("config")
	seedProgramConfig           = []byte("programconfig")
	seedLinkIds                 = []byte("linkids")
	seedSegmentRoutingIds       = []byte("segmentroutingids")
	seedUserTunnelBlock         = []byte("usertunnelblock")
	seedDeviceTunnelBlock       = []byte("devicetunnelblock")
	seedMulticastGroupBlock     = []byte("multicastgroupblock")
	seedMulticastPublisherBlock = []byte("multicastpublisherblock")
	seedVrfIds                  = []byte("vrfids")
	seedTunnelIds               = []byte("tunnelids")
	seedDzPrefixBlock            = []byte("dzprefixblock")
	seedLocation                = []byte("location")
	seedExchange                = []byte("exchange")
	seedContributor              = []byte("contributor")
	seedDevice                   = []byte("device")
	seedLink                     = []byte("link")
	seedUser                     = []byte("user")
	seedAccessPass                = []byte("accesspass")
	seedTenant                    = []byte("tenant")
)

// indexSeed returns the little-endian u128 byte encoding of an account index,
// used as the identity seed for legacy monotonic-index PDAs.
func indexSeed(index Uint128) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[:8], index.Low)
	binary.LittleEndian.PutUint64(b[8:], index.High)
	return b
}

// GetVrfIdsPDA derives the PDA for the global VrfIds resource extension.
func GetVrfIdsPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedVrfIds}, programID)
}

// GetTunnelIdsPDA derives the PDA for a device's per-slot TunnelIds resource extension.
func GetTunnelIdsPDA(programID solana.PublicKey, device solana.PublicKey, slot uint8) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedTunnelIds, device[:], {slot}}, programID)
}

// GetDzPrefixBlockPDA derives the PDA for a device's per-slot DzPrefixBlock resource extension.
func GetDzPrefixBlockPDA(programID solana.PublicKey, device solana.PublicKey, slot uint8) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedDzPrefixBlock, device[:], {slot}}, programID)
}

// GetLocationPDA derives the PDA for a Location account from its legacy monotonic index.
func GetLocationPDA(programID solana.PublicKey, index Uint128) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedLocation, indexSeed(index)}, programID)
}

// GetExchangePDA derives the PDA for an Exchange account from its legacy monotonic index.
func GetExchangePDA(programID solana.PublicKey, index Uint128) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedExchange, indexSeed(index)}, programID)
}

// GetContributorPDA derives the PDA for a Contributor account from its legacy monotonic index.
func GetContributorPDA(programID solana.PublicKey, index Uint128) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedContributor, indexSeed(index)}, programID)
}

// GetDevicePDA derives the PDA for a Device account from its legacy monotonic index.
func GetDevicePDA(programID solana.PublicKey, index Uint128) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedDevice, indexSeed(index)}, programID)
}

// GetLinkPDA derives the PDA for a Link account from its legacy monotonic index.
func GetLinkPDA(programID solana.PublicKey, index Uint128) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedLink, indexSeed(index)}, programID)
}

// GetUserPDALegacy derives the legacy, monotonic-index-based PDA for a User account.
// New deployments should prefer GetUserPDA; this form is retained only to accept
// compatibility-mode creates of pre-existing records.
func GetUserPDALegacy(programID solana.PublicKey, index Uint128) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedUser, indexSeed(index)}, programID)
}

// GetUserPDA derives the current PDA for a User account, keyed by (client_ip, user_type)
// so that a single payer IP can hold at most one User of each type.
func GetUserPDA(programID solana.PublicKey, clientIP [4]byte, userType UserUserType) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedUser, clientIP[:], {uint8(userType)}}, programID)
}

// GetAccessPassPDA derives the PDA for an AccessPass account, keyed by (client_ip, user_payer).
func GetAccessPassPDA(programID solana.PublicKey, clientIP [4]byte, userPayer solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedAccessPass, clientIP[:], userPayer[:]}, programID)
}

// GetTenantPDA derives the PDA for a Tenant account from its unique code.
func GetTenantPDA(programID solana.PublicKey, code string) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedTenant, []byte(code)}, programID)
}

func DeriveGlobalStatePDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedGlobalState}, programID)
}

func DeriveGlobalConfigPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedGlobalConfig}, programID)
}

func DeriveProgramConfigPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedProgramConfig}, programID)
}

// GetLinkIdsPDA derives the PDA for the global LinkIds resource extension
func GetLinkIdsPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedLinkIds}, programID)
}

// GetSegmentRoutingIdsPDA derives the PDA for the global SegmentRoutingIds resource extension
func GetSegmentRoutingIdsPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedSegmentRoutingIds}, programID)
}

// GetUserTunnelBlockPDA derives the PDA for the global UserTunnelBlock resource extension
func GetUserTunnelBlockPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedUserTunnelBlock}, programID)
}

// GetDeviceTunnelBlockPDA derives the PDA for the global DeviceTunnelBlock resource extension
func GetDeviceTunnelBlockPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedDeviceTunnelBlock}, programID)
}

// GetMulticastGroupBlockPDA derives the PDA for the global MulticastGroupBlock resource extension
func GetMulticastGroupBlockPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedMulticastGroupBlock}, programID)
}

// GetMulticastPublisherBlockPDA derives the PDA for the global MulticastPublisherBlock resource extension
func GetMulticastPublisherBlockPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrefix, seedMulticastPublisherBlock}, programID)
}
