package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/stretchr/testify/require"
)

// fakeProgramDataClient satisfies sc.ProgramDataProvider with a literal
// snapshot, mirroring the activator package's fakeServiceabilityClient.
type fakeProgramDataClient struct {
	pd  *sc.ProgramData
	err error
}

func (f *fakeProgramDataClient) GetProgramData(ctx context.Context) (*sc.ProgramData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pd, nil
}

type execCall struct {
	op       sc.Opcode
	accounts []sc.AccountMeta
}

type fakeExecutor struct {
	payer  solana.PublicKey
	calls  []execCall
	failOn map[sc.Opcode]error
}

func (f *fakeExecutor) Payer() solana.PublicKey { return f.payer }

func (f *fakeExecutor) ExecuteTransaction(ctx context.Context, op sc.Opcode, args any, accounts []sc.AccountMeta) (solana.Signature, error) {
	f.calls = append(f.calls, execCall{op: op, accounts: accounts})
	if f.failOn != nil {
		if err, ok := f.failOn[op]; ok {
			return solana.Signature{}, err
		}
	}
	return solana.Signature{}, nil
}

func (f *fakeExecutor) countOps(op sc.Opcode) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pubkeyOf(b byte) [32]byte {
	var out [32]byte
	out[0] = b
	return out
}

func TestDeleteMulticastGroup(t *testing.T) {
	groupKey := pubkeyOf(1)
	passWithBoth := pubkeyOf(2)
	passWithPubOnly := pubkeyOf(3)
	passUnrelated := pubkeyOf(4)

	pd := &sc.ProgramData{
		MulticastGroups: []sc.MulticastGroup{
			{Code: "mg1", PubKey: groupKey},
		},
		AccessPasses: []sc.AccessPass{
			{PubKey: passWithBoth, MGroupPubAllowlist: [][32]byte{groupKey}, MGroupSubAllowlist: [][32]byte{groupKey}},
			{PubKey: passWithPubOnly, MGroupPubAllowlist: [][32]byte{groupKey}},
			{PubKey: passUnrelated, MGroupPubAllowlist: [][32]byte{pubkeyOf(9)}},
		},
	}

	client := &fakeProgramDataClient{pd: pd}
	executor := &fakeExecutor{payer: solana.PublicKey{}}

	result, err := DeleteMulticastGroup(context.Background(), testLogger(), client, executor, "mg1")
	require.NoError(t, err)
	require.Equal(t, 3, result.ScrubbedCount)
	require.Empty(t, result.Failures)
	require.Equal(t, 1, executor.countOps(sc.OpDeleteMulticastGroup))
	require.Equal(t, 2, executor.countOps(sc.OpRemovePublisherMulticastGroup))
	require.Equal(t, 1, executor.countOps(sc.OpRemoveSubscriberMulticastGroup))
}

func TestDeleteMulticastGroup_NotFound(t *testing.T) {
	client := &fakeProgramDataClient{pd: &sc.ProgramData{}}
	executor := &fakeExecutor{}

	_, err := DeleteMulticastGroup(context.Background(), testLogger(), client, executor, "missing")
	require.Error(t, err)
	require.Empty(t, executor.calls)
}

func TestDeleteMulticastGroup_ScrubFailureIsCollectedNotFatal(t *testing.T) {
	groupKey := pubkeyOf(1)
	passKey := pubkeyOf(2)
	pd := &sc.ProgramData{
		MulticastGroups: []sc.MulticastGroup{{Code: "mg1", PubKey: groupKey}},
		AccessPasses: []sc.AccessPass{
			{PubKey: passKey, MGroupPubAllowlist: [][32]byte{groupKey}},
		},
	}
	client := &fakeProgramDataClient{pd: pd}
	executor := &fakeExecutor{
		failOn: map[sc.Opcode]error{sc.OpRemovePublisherMulticastGroup: errors.New("rpc unavailable")},
	}

	result, err := DeleteMulticastGroup(context.Background(), testLogger(), client, executor, "mg1")
	require.NoError(t, err)
	require.Equal(t, 0, result.ScrubbedCount)
	require.Len(t, result.Failures, 1)
	require.Equal(t, "publisher", result.Failures[0].Side)
	require.Equal(t, 1, executor.countOps(sc.OpDeleteMulticastGroup))
}

func TestDeleteTenantCascade_HappyPath(t *testing.T) {
	tenantKey := pubkeyOf(1)
	userKey := pubkeyOf(2)
	otherUserKey := pubkeyOf(3)
	passKey := pubkeyOf(4)

	pd := &sc.ProgramData{
		Tenants: []sc.Tenant{{Code: "t1", PubKey: tenantKey, ReferenceCount: 0}},
		Users: []sc.User{
			{PubKey: userKey, TenantPubKey: tenantKey},
			{PubKey: otherUserKey, TenantPubKey: pubkeyOf(9)},
		},
		AccessPasses: []sc.AccessPass{
			{PubKey: passKey, TenantAllowlist: [][32]byte{tenantKey}},
		},
	}
	client := &fakeProgramDataClient{pd: pd}
	executor := &fakeExecutor{}

	result, err := DeleteTenantCascade(context.Background(), testLogger(), client, executor, "t1")
	require.NoError(t, err)
	require.Equal(t, 1, result.DeletedUsers)
	require.Equal(t, 1, result.ScrubbedAllowlists)
	require.Equal(t, 1, executor.countOps(sc.OpDeleteUser))
	require.Equal(t, 1, executor.countOps(sc.OpScrubTenantAllowlistAccessPass))
	require.Equal(t, 1, executor.countOps(sc.OpDeleteTenant))
}

func TestDeleteTenantCascade_ReferenceCountNeverDrains(t *testing.T) {
	tenantKey := pubkeyOf(1)
	pd := &sc.ProgramData{
		Tenants: []sc.Tenant{{Code: "t1", PubKey: tenantKey, ReferenceCount: 3}},
	}
	client := &fakeProgramDataClient{pd: pd}
	executor := &fakeExecutor{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := DeleteTenantCascade(ctx, testLogger(), client, executor, "t1")
	require.Error(t, err)
	require.Equal(t, 0, executor.countOps(sc.OpDeleteTenant))
}

func TestPollTunnelDisconnected_UnreachableSocketIsTreatedAsDisconnected(t *testing.T) {
	sockFile := filepath.Join(t.TempDir(), "doublezerod.sock")

	disconnected := pollTunnelDisconnected(context.Background(), testLogger(), sockFile, 1, time.Millisecond)
	require.True(t, disconnected)
}

func TestPollTunnelDisconnected_WaitsForDisconnectedStatus(t *testing.T) {
	sockFile := filepath.Join(t.TempDir(), "doublezerod.sock")
	listener, err := net.Listen("unix", sockFile)
	require.NoError(t, err)
	defer listener.Close()

	var attempt atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status := "connected"
		if attempt.Add(1) >= 2 {
			status = "disconnected"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]tunnelStatus{{DoubleZeroStatus: status}})
	})
	srv := &http.Server{Handler: mux}
	go srv.Serve(listener)
	defer srv.Close()

	disconnected := pollTunnelDisconnected(context.Background(), testLogger(), sockFile, 5, 5*time.Millisecond)
	require.True(t, disconnected)
	require.GreaterOrEqual(t, attempt.Load(), int32(2))
}

func TestDiscoverLocalPublicIPv4(t *testing.T) {
	ip, err := discoverLocalPublicIPv4()
	if err != nil {
		t.Skipf("no routable interface in this environment: %v", err)
	}
	require.NotEqual(t, [4]byte{}, ip)
}

func TestReferenceCountBackOff(t *testing.T) {
	b := referenceCountBackOff()
	require.Equal(t, time.Second, b.InitialInterval)
	require.Equal(t, 32*time.Second, b.MaxInterval)
	require.Equal(t, 2.0, b.Multiplier)
	require.Equal(t, 0.0, b.RandomizationFactor)
}
