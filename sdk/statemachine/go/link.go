package statemachine

import (
	"github.com/dz-network/doublezero/sdk/allocator/go/idalloc"
	"github.com/dz-network/doublezero/sdk/allocator/go/ipalloc"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

// LinkEndpoints bundles a Link's two Device records and the named
// interfaces on each, looked up by the caller before invoking a
// transition (§4.4.2).
type LinkEndpoints struct {
	SideA      *sc.Device
	SideZ      *sc.Device
	SideAIface *sc.Interface
	SideZIface *sc.Interface
}

func findInterface(d *sc.Device, name string) *sc.Interface {
	for i := range d.Interfaces {
		if d.Interfaces[i].Name == name {
			return &d.Interfaces[i]
		}
	}
	return nil
}

// CreateLinkArgs is the validated argument set for a Link create.
type CreateLinkArgs struct {
	Code           string
	SideAIfaceName string
	SideZIfaceName string
}

// CreateLink validates a Link create (§4.4.2): both devices must be
// Activated and both named interfaces must exist and carry no tunnel
// binding (ip_net is the zero network, i.e. unbound).
func CreateLink(contributor *sc.Contributor, endpoints LinkEndpoints, args CreateLinkArgs) (*sc.Link, error) {
	if endpoints.SideA.Status != sc.DeviceStatusActivated || endpoints.SideZ.Status != sc.DeviceStatusActivated {
		return nil, sc.ErrInvalidStatus
	}
	sideAIface := findInterface(endpoints.SideA, args.SideAIfaceName)
	sideZIface := findInterface(endpoints.SideZ, args.SideZIfaceName)
	if sideAIface == nil || sideZIface == nil {
		return nil, sc.ErrInterfaceNotFound
	}
	if sideAIface.IpNet != ([5]uint8{}) || sideZIface.IpNet != ([5]uint8{}) {
		return nil, sc.ErrInterfaceAlreadyExists
	}

	contributor.ReferenceCount++
	endpoints.SideA.ReferenceCount++
	endpoints.SideZ.ReferenceCount++

	return &sc.Link{
		Status:         sc.LinkStatusPending,
		Code:           args.Code,
		SideAPubKey:    endpoints.SideA.PubKey,
		SideZPubKey:    endpoints.SideZ.PubKey,
		SideAIfaceName: args.SideAIfaceName,
		SideZIfaceName: args.SideZIfaceName,
	}, nil
}

// ActivateLink claims the next free tunnel id from linkIDs and the next
// free aligned /31 from deviceTunnelBlock, writes the assignment into the
// link, and patches both endpoints' named interfaces (§4.4.2).
func ActivateLink(l *sc.Link, endpoints LinkEndpoints, linkIDs *idalloc.Allocator, linkIDsBitmap []byte, deviceTunnelBlock *ipalloc.Allocator, deviceTunnelBitmap []byte) error {
	if l.Status != sc.LinkStatusPending {
		return sc.ErrInvalidStatus
	}

	tunnelID, err := linkIDs.NextAvailable(linkIDsBitmap)
	if err != nil {
		return err
	}
	tunnelNet, ok := deviceTunnelBlock.Allocate(deviceTunnelBitmap, 2)
	if !ok {
		_ = linkIDs.Unassign(linkIDsBitmap, tunnelID)
		return ipalloc.ErrOutOfRange
	}

	l.TunnelId = tunnelID
	l.TunnelNet = [5]uint8(tunnelNet)
	l.Status = sc.LinkStatusActivated

	// tunnel_net is a /31: its base address is side A's endpoint, the
	// next address is side Z's.
	base := tunnelNet.IP().To4()
	next := net4Copy(base)
	next[3]++

	endpoints.SideAIface.IpNet = [5]uint8{base[0], base[1], base[2], base[3], 31}
	endpoints.SideZIface.IpNet = [5]uint8{next[0], next[1], next[2], next[3], 31}
	return nil
}

func net4Copy(ip []byte) [4]byte {
	var out [4]byte
	copy(out[:], ip)
	return out
}

// RejectLink moves Pending→Rejected when allocation failed; the record
// remains for audit (§4.4.2).
func RejectLink(l *sc.Link) error {
	if l.Status != sc.LinkStatusPending {
		return sc.ErrInvalidStatus
	}
	l.Status = sc.LinkStatusRejected
	return nil
}

// UpdateLinkArgs carries the fields Update may change while Activated.
type UpdateLinkArgs struct {
	Code      *string
	Bandwidth *uint64
	Mtu       *uint32
	DelayNs   *uint64
	JitterNs  *uint64
}

func UpdateLink(l *sc.Link, args UpdateLinkArgs) error {
	if l.Status != sc.LinkStatusActivated {
		return sc.ErrInvalidStatus
	}
	if args.Code != nil {
		l.Code = *args.Code
	}
	if args.Bandwidth != nil {
		l.Bandwidth = *args.Bandwidth
	}
	if args.Mtu != nil {
		l.Mtu = *args.Mtu
	}
	if args.DelayNs != nil {
		l.DelayNs = *args.DelayNs
	}
	if args.JitterNs != nil {
		l.JitterNs = *args.JitterNs
	}
	return nil
}

// DeleteLink transitions Activated→Deleting.
func DeleteLink(l *sc.Link) error {
	if l.Status != sc.LinkStatusActivated {
		return sc.ErrInvalidStatus
	}
	l.Status = sc.LinkStatusDeleting
	return nil
}

// CloseAccountLink deallocates the tunnel id and subnet, rewrites both
// endpoints' ip_net back to the unbound zero network, and decrements
// reference counts (§4.4.2).
func CloseAccountLink(l *sc.Link, contributor *sc.Contributor, endpoints LinkEndpoints, linkIDs *idalloc.Allocator, linkIDsBitmap []byte, deviceTunnelBlock *ipalloc.Allocator, deviceTunnelBitmap []byte) error {
	if l.Status != sc.LinkStatusDeleting {
		return sc.ErrInvalidStatus
	}

	if l.TunnelId != 0 {
		_ = linkIDs.Unassign(linkIDsBitmap, l.TunnelId)
	}
	if l.TunnelNet != ([5]uint8{}) {
		deviceTunnelBlock.Deallocate(deviceTunnelBitmap, ipalloc.Network(l.TunnelNet))
	}

	endpoints.SideAIface.IpNet = [5]uint8{}
	endpoints.SideZIface.IpNet = [5]uint8{}

	contributor.ReferenceCount--
	endpoints.SideA.ReferenceCount--
	endpoints.SideZ.ReferenceCount--
	return nil
}
