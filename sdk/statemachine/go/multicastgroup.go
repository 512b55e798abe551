package statemachine

import (
	"github.com/dz-network/doublezero/sdk/allocator/go/ipalloc"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

// CreateMulticastGroup validates a create and allocates a multicast IPv4
// from multicastGroupBlock (§4.4.4).
func CreateMulticastGroup(code string, maxBandwidth uint64, multicastGroupBlock *ipalloc.Allocator, bitmap []byte) (*sc.MulticastGroup, error) {
	if len(code) == 0 || len(code) > 32 {
		return nil, sc.ErrCodeTooLong
	}
	allocated, ok := multicastGroupBlock.Allocate(bitmap, 1)
	if !ok {
		return nil, sc.ErrInvalidMulticastIp
	}
	return &sc.MulticastGroup{
		Status:       sc.MulticastGroupStatusPending,
		Code:         code,
		MaxBandwidth: maxBandwidth,
		MulticastIp:  [4]uint8{allocated[0], allocated[1], allocated[2], allocated[3]},
	}, nil
}

// ActivateMulticastGroup transitions Pending→Activated.
func ActivateMulticastGroup(g *sc.MulticastGroup) error {
	if g.Status != sc.MulticastGroupStatusPending {
		return sc.ErrInvalidStatus
	}
	g.Status = sc.MulticastGroupStatusActivated
	return nil
}

// SuspendMulticastGroup and ResumeMulticastGroup toggle Activated↔Suspended;
// unlike Device, the multicast group's status enum carries a dedicated
// Suspended variant so this maps onto it directly.
func SuspendMulticastGroup(g *sc.MulticastGroup) error {
	if g.Status != sc.MulticastGroupStatusActivated {
		return sc.ErrInvalidStatus
	}
	g.Status = sc.MulticastGroupStatusSuspended
	return nil
}

func ResumeMulticastGroup(g *sc.MulticastGroup) error {
	if g.Status != sc.MulticastGroupStatusSuspended {
		return sc.ErrInvalidStatus
	}
	g.Status = sc.MulticastGroupStatusActivated
	return nil
}

// AddPublisher/RemovePublisher/AddSubscriber/RemoveSubscriber mutate the
// AccessPass's allowlist, not the group — the group only carries counts
// (§4.4.4).
func AddPublisher(pass *sc.AccessPass, group *sc.MulticastGroup) error {
	if containsPubkey(pass.MGroupPubAllowlist, group.PubKey) {
		return nil
	}
	pass.MGroupPubAllowlist = append(pass.MGroupPubAllowlist, group.PubKey)
	group.PublisherCount++
	return nil
}

func RemovePublisher(pass *sc.AccessPass, group *sc.MulticastGroup) error {
	if !containsPubkey(pass.MGroupPubAllowlist, group.PubKey) {
		return sc.ErrAccessPassNotFound
	}
	pass.MGroupPubAllowlist = removePubkey(pass.MGroupPubAllowlist, group.PubKey)
	group.PublisherCount--
	return nil
}

func AddSubscriber(pass *sc.AccessPass, group *sc.MulticastGroup) error {
	if containsPubkey(pass.MGroupSubAllowlist, group.PubKey) {
		return nil
	}
	pass.MGroupSubAllowlist = append(pass.MGroupSubAllowlist, group.PubKey)
	group.SubscriberCount++
	return nil
}

func RemoveSubscriber(pass *sc.AccessPass, group *sc.MulticastGroup) error {
	if !containsPubkey(pass.MGroupSubAllowlist, group.PubKey) {
		return sc.ErrAccessPassNotFound
	}
	pass.MGroupSubAllowlist = removePubkey(pass.MGroupSubAllowlist, group.PubKey)
	group.SubscriberCount--
	return nil
}

// DeleteMulticastGroup requires both counts to be zero. Scrubbing every
// AccessPass allowlist referencing the group is the caller's job (C7
// walks all passes before calling this — see the operator command
// surface's DeleteMulticastGroup composite operation).
func DeleteMulticastGroup(g *sc.MulticastGroup) error {
	if g.PublisherCount != 0 || g.SubscriberCount != 0 {
		return sc.ErrReferenceCountNotZero
	}
	g.Status = sc.MulticastGroupStatusDeleting
	return nil
}

// CloseAccountMulticastGroup deallocates the multicast IP.
func CloseAccountMulticastGroup(g *sc.MulticastGroup, multicastGroupBlock *ipalloc.Allocator, bitmap []byte) error {
	if g.Status != sc.MulticastGroupStatusDeleting {
		return sc.ErrInvalidStatus
	}
	multicastGroupBlock.Deallocate(bitmap, ipalloc.NewNetwork(netIP(g.MulticastIp), 32))
	return nil
}

func netIP(ip [4]uint8) []byte { return ip[:] }
