package statemachine

import (
	"testing"

	"github.com/dz-network/doublezero/sdk/allocator/go/idalloc"
	"github.com/dz-network/doublezero/sdk/allocator/go/ipalloc"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/stretchr/testify/require"
)

func newLinkEndpoints() (LinkEndpoints, *sc.Device, *sc.Device) {
	sideA := &sc.Device{
		Status:     sc.DeviceStatusActivated,
		Interfaces: []sc.Interface{{Name: "eth0"}},
	}
	sideZ := &sc.Device{
		Status:     sc.DeviceStatusActivated,
		Interfaces: []sc.Interface{{Name: "eth0"}},
	}
	return LinkEndpoints{
		SideA:      sideA,
		SideZ:      sideZ,
		SideAIface: &sideA.Interfaces[0],
		SideZIface: &sideZ.Interfaces[0],
	}, sideA, sideZ
}

func TestCreateLinkRequiresActivatedEndpoints(t *testing.T) {
	endpoints, _, _ := newLinkEndpoints()
	endpoints.SideA.Status = sc.DeviceStatusPending
	contributor := &sc.Contributor{}
	_, err := CreateLink(contributor, endpoints, CreateLinkArgs{Code: "lax-nyc", SideAIfaceName: "eth0", SideZIfaceName: "eth0"})
	require.ErrorIs(t, err, sc.ErrInvalidStatus)
}

func TestCreateLinkRejectsBoundInterface(t *testing.T) {
	endpoints, _, _ := newLinkEndpoints()
	endpoints.SideAIface.IpNet = [5]uint8{10, 0, 0, 0, 31}
	contributor := &sc.Contributor{}
	_, err := CreateLink(contributor, endpoints, CreateLinkArgs{Code: "lax-nyc", SideAIfaceName: "eth0", SideZIfaceName: "eth0"})
	require.ErrorIs(t, err, sc.ErrInterfaceAlreadyExists)
}

func TestCreateLinkHappyPath(t *testing.T) {
	endpoints, sideA, sideZ := newLinkEndpoints()
	contributor := &sc.Contributor{}
	l, err := CreateLink(contributor, endpoints, CreateLinkArgs{Code: "lax-nyc", SideAIfaceName: "eth0", SideZIfaceName: "eth0"})
	require.NoError(t, err)
	require.Equal(t, sc.LinkStatusPending, l.Status)
	require.EqualValues(t, 1, contributor.ReferenceCount)
	require.EqualValues(t, 1, sideA.ReferenceCount)
	require.EqualValues(t, 1, sideZ.ReferenceCount)
}

func TestActivateLinkAssignsAdjacentEndpointIPs(t *testing.T) {
	endpoints, _, _ := newLinkEndpoints()
	l := &sc.Link{Status: sc.LinkStatusPending}

	linkIDs := idalloc.New(1, 1000)
	linkIDsBitmap := make([]byte, idalloc.RequiredBitmapSize(1, 1000))

	base := ipalloc.NewNetwork([]byte{10, 0, 0, 0}, 24)
	deviceTunnelBlock := ipalloc.New(base)
	deviceTunnelBitmap := make([]byte, ipalloc.RequiredBitmapSize(base.Prefix()))

	err := ActivateLink(l, endpoints, linkIDs, linkIDsBitmap, deviceTunnelBlock, deviceTunnelBitmap)
	require.NoError(t, err)
	require.Equal(t, sc.LinkStatusActivated, l.Status)
	require.NotZero(t, l.TunnelId)

	aIP := endpoints.SideAIface.IpNet
	zIP := endpoints.SideZIface.IpNet
	require.EqualValues(t, 31, aIP[4])
	require.EqualValues(t, 31, zIP[4])
	require.Equal(t, aIP[3]+1, zIP[3])
}

func TestUpdateLinkRequiresActivated(t *testing.T) {
	l := &sc.Link{Status: sc.LinkStatusPending}
	code := "new-code"
	require.ErrorIs(t, UpdateLink(l, UpdateLinkArgs{Code: &code}), sc.ErrInvalidStatus)
}

func TestCloseAccountLinkReleasesResourcesAndUnbindsInterfaces(t *testing.T) {
	endpoints, sideA, sideZ := newLinkEndpoints()
	endpoints.SideAIface.IpNet = [5]uint8{10, 0, 0, 0, 31}
	endpoints.SideZIface.IpNet = [5]uint8{10, 0, 0, 1, 31}
	contributor := &sc.Contributor{ReferenceCount: 1}
	sideA.ReferenceCount = 1
	sideZ.ReferenceCount = 1

	l := &sc.Link{Status: sc.LinkStatusDeleting, TunnelId: 5, TunnelNet: [5]uint8{10, 0, 0, 0, 31}}

	linkIDs := idalloc.New(1, 1000)
	linkIDsBitmap := make([]byte, idalloc.RequiredBitmapSize(1, 1000))
	require.NoError(t, linkIDs.Assign(linkIDsBitmap, 5))

	base := ipalloc.NewNetwork([]byte{10, 0, 0, 0}, 24)
	deviceTunnelBlock := ipalloc.New(base)
	deviceTunnelBitmap := make([]byte, ipalloc.RequiredBitmapSize(base.Prefix()))
	require.NoError(t, deviceTunnelBlock.AllocateSpecific(deviceTunnelBitmap, ipalloc.Network(l.TunnelNet)))

	err := CloseAccountLink(l, contributor, endpoints, linkIDs, linkIDsBitmap, deviceTunnelBlock, deviceTunnelBitmap)
	require.NoError(t, err)
	require.Equal(t, [5]uint8{}, endpoints.SideAIface.IpNet)
	require.Equal(t, [5]uint8{}, endpoints.SideZIface.IpNet)
	require.EqualValues(t, 0, contributor.ReferenceCount)
	require.EqualValues(t, 0, sideA.ReferenceCount)
	require.EqualValues(t, 0, sideZ.ReferenceCount)

	require.NotContains(t, linkIDs.Assigned(linkIDsBitmap), uint16(5))
}
