// Package statemachine implements the per-entity transition tables of
// §4.4: preconditions, side effects on allocators, and counterpart-entity
// updates (reference counts, per-device per-type user caps). The same
// functions back both the client-side composer and the on-chain handler
// equivalent — callers differ only in where the entity pointers they pass
// in came from (a freshly fetched ledger account vs. an in-memory mirror).
package statemachine

import (
	"net"

	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

var zeroPubkey [32]byte

func containsPubkey(list [][32]byte, pk [32]byte) bool {
	for _, p := range list {
		if p == pk {
			return true
		}
	}
	return false
}

func removePubkey(list [][32]byte, pk [32]byte) [][32]byte {
	out := list[:0]
	for _, p := range list {
		if p != pk {
			out = append(out, p)
		}
	}
	return out
}

func isGlobalUnicast(ip [4]uint8) bool {
	return net.IP(ip[:]).IsGlobalUnicast()
}

func isZeroIP(ip [4]uint8) bool {
	return ip == [4]uint8{}
}

func isLinkLocal(ip [4]uint8) bool {
	return net.IP(ip[:]).IsLinkLocalUnicast()
}

func isFoundationOrQA(gs *sc.GlobalState, pk [32]byte) bool {
	return containsPubkey(gs.FoundationAllowlist, pk) || containsPubkey(gs.QAAllowlist, pk)
}

func isFoundation(gs *sc.GlobalState, pk [32]byte) bool {
	return containsPubkey(gs.FoundationAllowlist, pk)
}
