package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

// transactionSubmitter is the write surface composite operations need out of
// *sc.Executor.
type transactionSubmitter interface {
	Payer() solana.PublicKey
	ExecuteTransaction(ctx context.Context, op sc.Opcode, args any, accounts []sc.AccountMeta) (solana.Signature, error)
}

// DeleteMulticastGroupResult reports the outcome of DeleteMulticastGroup's
// allowlist scrub pass.
type DeleteMulticastGroupResult struct {
	ScrubbedCount int
	Failures      []ScrubFailure
}

// ScrubFailure records one allowlist entry that could not be removed during
// a composite delete.
type ScrubFailure struct {
	AccessPassPubkey string
	Side             string
	Err              error
}

// DeleteMulticastGroup removes the group from every AccessPass publisher and
// subscriber allowlist that still references it, then deletes the group
// itself. Scrub failures are collected and reported rather than aborting the
// whole operation, since a single bad allowlist entry shouldn't block cleanup
// of the rest.
func DeleteMulticastGroup(ctx context.Context, log *slog.Logger, client sc.ProgramDataProvider, executor transactionSubmitter, code string) (DeleteMulticastGroupResult, error) {
	var result DeleteMulticastGroupResult

	pd, err := client.GetProgramData(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch program data: %w", err)
	}
	group, err := findMulticastGroupByCode(pd.MulticastGroups, code)
	if err != nil {
		return result, err
	}

	payer := executor.Payer()
	for _, pass := range pd.AccessPasses {
		for _, pub := range pass.MGroupPubAllowlist {
			if pub != group.PubKey {
				continue
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(payer), true, true),
				accountMeta(pass.PubKey, false, true),
				accountMeta(group.PubKey, false, false),
			}
			if _, err := executor.ExecuteTransaction(ctx, sc.OpRemovePublisherMulticastGroup, nil, accounts); err != nil {
				result.Failures = append(result.Failures, ScrubFailure{AccessPassPubkey: pubkeyString(pass.PubKey), Side: "publisher", Err: err})
				log.Warn("failed to scrub publisher allowlist entry", "access_pass", pubkeyString(pass.PubKey), "error", err)
				continue
			}
			result.ScrubbedCount++
			break
		}
		for _, sub := range pass.MGroupSubAllowlist {
			if sub != group.PubKey {
				continue
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(payer), true, true),
				accountMeta(pass.PubKey, false, true),
				accountMeta(group.PubKey, false, false),
			}
			if _, err := executor.ExecuteTransaction(ctx, sc.OpRemoveSubscriberMulticastGroup, nil, accounts); err != nil {
				result.Failures = append(result.Failures, ScrubFailure{AccessPassPubkey: pubkeyString(pass.PubKey), Side: "subscriber", Err: err})
				log.Warn("failed to scrub subscriber allowlist entry", "access_pass", pubkeyString(pass.PubKey), "error", err)
				continue
			}
			result.ScrubbedCount++
			break
		}
	}

	accounts := []sc.AccountMeta{
		accountMeta([32]byte(payer), true, true),
		accountMeta(group.PubKey, false, true),
	}
	if _, err := executor.ExecuteTransaction(ctx, sc.OpDeleteMulticastGroup, nil, accounts); err != nil {
		return result, fmt.Errorf("failed to delete multicast group %q: %w", code, err)
	}
	return result, nil
}

// DeleteTenantCascadeResult reports the outcome of a cascading tenant delete.
type DeleteTenantCascadeResult struct {
	DeletedUsers       int
	ScrubbedAllowlists int
}

// referenceCountBackOff is the exponential schedule used by
// DeleteTenantCascade's reference_count poll: 1, 2, 4, 8, 16, 32, 32, 32
// seconds (capped at 32s, 8 attempts,
// 127s cumulative).
func referenceCountBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 32 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	return b
}

// DeleteTenantCascade deletes every User pinned to the tenant, polls the
// tenant's reference_count until it drains to zero, scrubs the tenant from
// every AccessPass's tenant_allowlist, and finally deletes the tenant.
func DeleteTenantCascade(ctx context.Context, log *slog.Logger, client sc.ProgramDataProvider, executor transactionSubmitter, code string) (DeleteTenantCascadeResult, error) {
	var result DeleteTenantCascadeResult

	pd, err := client.GetProgramData(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch program data: %w", err)
	}
	tenant, err := findTenantByCode(pd.Tenants, code)
	if err != nil {
		return result, err
	}

	payer := executor.Payer()
	for _, u := range pd.Users {
		if u.TenantPubKey != tenant.PubKey {
			continue
		}
		accounts := []sc.AccountMeta{
			accountMeta([32]byte(payer), true, true),
			accountMeta(u.PubKey, false, true),
		}
		if _, err := executor.ExecuteTransaction(ctx, sc.OpDeleteUser, nil, accounts); err != nil {
			return result, fmt.Errorf("failed to delete user %s pinned to tenant %q: %w", pubkeyString(u.PubKey), code, err)
		}
		result.DeletedUsers++
	}

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		pd, err := client.GetProgramData(ctx)
		if err != nil {
			return struct{}{}, err
		}
		t, err := findTenantByCode(pd.Tenants, code)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if t.ReferenceCount != 0 {
			log.Debug("waiting for tenant reference_count to drain", "code", code, "reference_count", t.ReferenceCount, "attempt", attempt)
			return struct{}{}, fmt.Errorf("tenant %q still has reference_count=%d", code, t.ReferenceCount)
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(referenceCountBackOff()), backoff.WithMaxTries(8))
	if err != nil {
		return result, fmt.Errorf("reference_count never drained to 0: %w", err)
	}

	pd, err = client.GetProgramData(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to refetch program data before scrub: %w", err)
	}
	for _, pass := range pd.AccessPasses {
		for _, ref := range pass.TenantAllowlist {
			if ref != tenant.PubKey {
				continue
			}
			accounts := []sc.AccountMeta{
				accountMeta([32]byte(payer), true, true),
				accountMeta(pass.PubKey, false, true),
				accountMeta(tenant.PubKey, false, false),
			}
			if _, err := executor.ExecuteTransaction(ctx, sc.OpScrubTenantAllowlistAccessPass, nil, accounts); err != nil {
				return result, fmt.Errorf("failed to scrub tenant_allowlist on access pass %s: %w", pubkeyString(pass.PubKey), err)
			}
			result.ScrubbedAllowlists++
			break
		}
	}

	accounts := []sc.AccountMeta{
		accountMeta([32]byte(payer), true, true),
		accountMeta(tenant.PubKey, false, true),
	}
	if _, err := executor.ExecuteTransaction(ctx, sc.OpDeleteTenant, nil, accounts); err != nil {
		return result, fmt.Errorf("failed to delete tenant %q: %w", code, err)
	}
	return result, nil
}

// DisconnectConfig parameterizes Disconnect.
type DisconnectConfig struct {
	// UserType restricts the delete to users of this type; nil deletes every
	// local user regardless of type.
	UserType *sc.UserUserType

	// SockFile is the doublezerod unix domain socket to poll for tunnel
	// teardown confirmation. Defaults to the daemon's standard path.
	SockFile string
}

// DisconnectResult reports the outcome of Disconnect.
type DisconnectResult struct {
	DeletedUsers int
	Disconnected bool
}

const defaultDoubleZeroDSockFile = "/var/run/doublezerod/doublezerod.sock"

// Disconnect deletes every onchain User whose client_ip matches this host's
// publicly routable address (optionally filtered by user_type), then polls
// the local tunnel daemon up to 12 times at 5s intervals for confirmation
// that it has torn the tunnel down.
func Disconnect(ctx context.Context, log *slog.Logger, client sc.ProgramDataProvider, executor transactionSubmitter, cfg DisconnectConfig) (DisconnectResult, error) {
	var result DisconnectResult

	clientIP, err := discoverLocalPublicIPv4()
	if err != nil {
		return result, fmt.Errorf("failed to determine local public IP: %w", err)
	}

	pd, err := client.GetProgramData(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch program data: %w", err)
	}

	payer := executor.Payer()
	for _, u := range pd.Users {
		if u.ClientIp != clientIP {
			continue
		}
		if cfg.UserType != nil && u.UserType != *cfg.UserType {
			continue
		}
		accounts := []sc.AccountMeta{
			accountMeta([32]byte(payer), true, true),
			accountMeta(u.PubKey, false, true),
		}
		if _, err := executor.ExecuteTransaction(ctx, sc.OpDeleteUser, nil, accounts); err != nil {
			return result, fmt.Errorf("failed to delete user %s: %w", pubkeyString(u.PubKey), err)
		}
		result.DeletedUsers++
	}

	sockFile := cfg.SockFile
	if sockFile == "" {
		sockFile = defaultDoubleZeroDSockFile
	}
	result.Disconnected = pollTunnelDisconnected(ctx, log, sockFile, 12, 5*time.Second)
	return result, nil
}

// tunnelStatus mirrors the fields of doublezerod's /status response that
// Disconnect needs; kept local since the daemon's response type lives in an
// internal package this module cannot import.
type tunnelStatus struct {
	DoubleZeroStatus string `json:"doublezero_status"`
}

// pollTunnelDisconnected polls doublezerod's local /status endpoint up to
// attempts times, sleeping interval between each, until it reports no active
// session (or the socket is unreachable, meaning the daemon tore everything
// down already).
func pollTunnelDisconnected(ctx context.Context, log *slog.Logger, sockFile string, attempts int, interval time.Duration) bool {
	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", sockFile)
			},
		},
		Timeout: 5 * time.Second,
	}

	for i := 0; i < attempts; i++ {
		disconnected, err := queryTunnelStatus(ctx, httpClient)
		if err != nil {
			log.Debug("tunnel daemon unreachable, treating as disconnected", "error", err)
			return true
		}
		if disconnected {
			return true
		}
		log.Debug("waiting for tunnel daemon to report disconnected", "attempt", i+1)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return false
}

func queryTunnelStatus(ctx context.Context, httpClient *http.Client) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://doublezerod/status", nil)
	if err != nil {
		return false, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	var statuses []tunnelStatus
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return false, fmt.Errorf("decoding status response: %w", err)
	}
	if len(statuses) == 0 {
		return true, nil
	}
	for _, s := range statuses {
		if s.DoubleZeroStatus != "disconnected" {
			return false, nil
		}
	}
	return true, nil
}

// discoverLocalPublicIPv4 determines this host's publicly routable IPv4
// address by asking the kernel for the default route's source address: a UDP
// dial to a well-known public IP (no packets are actually sent), reading back
// the local address the kernel would route outbound traffic from.
func discoverLocalPublicIPv4() ([4]byte, error) {
	var out [4]byte
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return out, fmt.Errorf("route lookup failed: %w", err)
	}
	defer conn.Close()

	localAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return out, fmt.Errorf("unexpected local address type: %T", conn.LocalAddr())
	}
	ip4 := localAddr.IP.To4()
	if ip4 == nil {
		return out, fmt.Errorf("default route source is not IPv4: %v", localAddr.IP)
	}
	copy(out[:], ip4)
	return out, nil
}
