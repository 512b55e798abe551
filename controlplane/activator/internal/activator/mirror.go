// Package activator reconciles the serviceability program's on-chain state:
// it watches for newly created (Pending) entities, assigns the resources
// their activation requires from the program's bitmap allocators, and
// submits the Activate instruction. The per-entity precondition and
// side-effect rules live in sdk/statemachine/go; this package owns the
// allocator bitmaps, the bootstrap snapshot rebuild, and the event loop
// that drives the statemachine functions against live ledger state.
package activator

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/dz-network/doublezero/sdk/allocator/go/idalloc"
	"github.com/dz-network/doublezero/sdk/allocator/go/ipalloc"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

// resourcePool pairs a ResourceExtension's on-chain allocator with the
// in-memory bitmap mirror the statemachine functions mutate directly.
type resourcePool struct {
	ipAlloc *ipalloc.Allocator
	idAlloc *idalloc.Allocator
	bitmap  []byte
}

// Mirror is the activator's in-memory snapshot of program state: the
// entities it needs to inspect for Pending records and the resource pools
// it draws allocations from during activation.
type Mirror struct {
	GlobalState  *sc.GlobalState
	GlobalConfig *sc.GlobalConfig

	Devices         map[[32]byte]*sc.Device
	Links           map[[32]byte]*sc.Link
	Users           map[[32]byte]*sc.User
	MulticastGroups map[[32]byte]*sc.MulticastGroup
	Tenants         map[[32]byte]*sc.Tenant
	AccessPasses    map[[32]byte]*sc.AccessPass
	Contributors    map[[32]byte]*sc.Contributor
	Locations       map[[32]byte]*sc.Location
	Exchanges       map[[32]byte]*sc.Exchange

	vrfIds            *resourcePool
	linkIDs           *resourcePool
	deviceTunnelBlock *resourcePool
	userTunnelBlock   *resourcePool
	multicastBlock    *resourcePool

	// deviceTunnelIDs and dzPrefixBlocks are per-device pools, keyed by
	// the owning Device's pubkey (§4.2: each device hands its own Users a
	// tunnel ID and carries its own DZ prefix block).
	deviceTunnelIDs map[[32]byte]*resourcePool
	dzPrefixBlocks  map[[32]byte]*resourcePool
}

// NewMirrorFromProgramData rebuilds the full in-memory mirror from a
// freshly fetched snapshot — the bootstrap path run once at startup and,
// per spec.md §4.5, periodically thereafter to correct drift. Global
// resource pools are identified by deriving their PDA and matching it
// against each ResourceExtension's address, exactly as the on-chain
// program itself addresses them; per-device pools are matched by
// AssociatedWith plus allocator shape (IP vs ID).
func NewMirrorFromProgramData(programID solana.PublicKey, pd *sc.ProgramData) (*Mirror, error) {
	if pd.GlobalConfig == nil {
		return nil, fmt.Errorf("program data is missing GlobalConfig")
	}

	m := &Mirror{
		GlobalState:     pd.GlobalState,
		GlobalConfig:    pd.GlobalConfig,
		Devices:         map[[32]byte]*sc.Device{},
		Links:           map[[32]byte]*sc.Link{},
		Users:           map[[32]byte]*sc.User{},
		MulticastGroups: map[[32]byte]*sc.MulticastGroup{},
		Tenants:         map[[32]byte]*sc.Tenant{},
		AccessPasses:    map[[32]byte]*sc.AccessPass{},
		Contributors:    map[[32]byte]*sc.Contributor{},
		Locations:       map[[32]byte]*sc.Location{},
		Exchanges:       map[[32]byte]*sc.Exchange{},
		deviceTunnelIDs: map[[32]byte]*resourcePool{},
		dzPrefixBlocks:  map[[32]byte]*resourcePool{},
	}

	for i := range pd.Devices {
		m.Devices[pd.Devices[i].PubKey] = &pd.Devices[i]
	}
	for i := range pd.Links {
		m.Links[pd.Links[i].PubKey] = &pd.Links[i]
	}
	for i := range pd.Users {
		m.Users[pd.Users[i].PubKey] = &pd.Users[i]
	}
	for i := range pd.MulticastGroups {
		m.MulticastGroups[pd.MulticastGroups[i].PubKey] = &pd.MulticastGroups[i]
	}
	for i := range pd.Tenants {
		m.Tenants[pd.Tenants[i].PubKey] = &pd.Tenants[i]
	}
	for i := range pd.AccessPasses {
		m.AccessPasses[pd.AccessPasses[i].PubKey] = &pd.AccessPasses[i]
	}
	for i := range pd.Contributors {
		m.Contributors[pd.Contributors[i].PubKey] = &pd.Contributors[i]
	}
	for i := range pd.Locations {
		m.Locations[pd.Locations[i].PubKey] = &pd.Locations[i]
	}
	for i := range pd.Exchanges {
		m.Exchanges[pd.Exchanges[i].PubKey] = &pd.Exchanges[i]
	}

	vrfIdsPDA, _, err := sc.GetVrfIdsPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("derive vrf ids PDA: %w", err)
	}
	linkIDsPDA, _, err := sc.GetLinkIdsPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("derive link ids PDA: %w", err)
	}
	deviceTunnelBlockPDA, _, err := sc.GetDeviceTunnelBlockPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("derive device tunnel block PDA: %w", err)
	}
	userTunnelBlockPDA, _, err := sc.GetUserTunnelBlockPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("derive user tunnel block PDA: %w", err)
	}
	multicastGroupBlockPDA, _, err := sc.GetMulticastGroupBlockPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("derive multicast group block PDA: %w", err)
	}

	for i := range pd.ResourceExtensions {
		ext := &pd.ResourceExtensions[i]
		pool, err := resourcePoolFromExtension(ext)
		if err != nil {
			return nil, fmt.Errorf("resource extension %s: %w", solana.PublicKey(ext.PubKey), err)
		}

		switch solana.PublicKey(ext.PubKey) {
		case vrfIdsPDA:
			m.vrfIds = pool
		case linkIDsPDA:
			m.linkIDs = pool
		case deviceTunnelBlockPDA:
			m.deviceTunnelBlock = pool
		case userTunnelBlockPDA:
			m.userTunnelBlock = pool
		case multicastGroupBlockPDA:
			m.multicastBlock = pool
		default:
			if ext.AssociatedWith == ([32]byte{}) {
				continue // an unrecognized global pool (e.g. SegmentRoutingIds); not wired to any activation path yet
			}
			if ext.Allocator.Type == sc.AllocatorTypeId {
				m.deviceTunnelIDs[ext.AssociatedWith] = pool
			} else {
				m.dzPrefixBlocks[ext.AssociatedWith] = pool
			}
		}
	}

	return m, nil
}

func resourcePoolFromExtension(ext *sc.ResourceExtension) (*resourcePool, error) {
	pool := &resourcePool{bitmap: ext.Storage}
	switch ext.Allocator.Type {
	case sc.AllocatorTypeIp:
		if ext.Allocator.IpAllocator == nil {
			return nil, fmt.Errorf("missing IpAllocator for type %s", ext.Allocator.Type)
		}
		base := ipalloc.Network(ext.Allocator.IpAllocator.BaseNet)
		pool.ipAlloc = &ipalloc.Allocator{BaseNet: base, FirstFreeIndex: ext.Allocator.IpAllocator.FirstFreeIndex}
	case sc.AllocatorTypeId:
		if ext.Allocator.IdAllocator == nil {
			return nil, fmt.Errorf("missing IdAllocator for type %s", ext.Allocator.Type)
		}
		pool.idAlloc = &idalloc.Allocator{
			RangeStart:     ext.Allocator.IdAllocator.RangeStart,
			RangeEnd:       ext.Allocator.IdAllocator.RangeEnd,
			FirstFreeIndex: ext.Allocator.IdAllocator.FirstFreeIndex,
		}
	default:
		return nil, fmt.Errorf("unknown allocator type %d", ext.Allocator.Type)
	}
	return pool, nil
}
