package activator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/jellydator/ttlcache/v3"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"

	"github.com/dz-network/doublezero/controlplane/activator/internal/metrics"
)

// Activator watches the serviceability program for entities waiting in a
// Pending status and drives them through activation (§4.5 "Activator").
// It keeps two pieces of state across restarts of the event loop: the
// Mirror, a full in-memory snapshot rebuilt periodically from
// GetProgramData, and an in-flight set guarding against submitting the
// same activation twice while its transaction is still landing.
type Activator struct {
	cfg    Config
	log    *slog.Logger
	mirror *Mirror

	inFlight *ttlcache.Cache[string, struct{}]
	pool     pond.Pool
}

func New(cfg Config) (*Activator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	inFlight := ttlcache.New(
		ttlcache.WithTTL[string, struct{}](cfg.InFlightTTL),
	)
	go inFlight.Start()

	return &Activator{
		cfg:      cfg,
		log:      cfg.Logger,
		inFlight: inFlight,
		pool:     pond.NewPool(cfg.BootstrapPoolSize),
	}, nil
}

// Run bootstraps the mirror, then alternates between consuming the account
// update stream and periodically rebootstrapping to correct any drift a
// missed or out-of-order update would otherwise leave behind.
func (a *Activator) Run(ctx context.Context) error {
	a.log.Info("Starting activator",
		"programID", a.cfg.Serviceability.ProgramID(),
		"subscribeInterval", a.cfg.SubscribeInterval,
		"bootstrapInterval", a.cfg.BootstrapInterval,
	)

	if err := a.bootstrap(ctx); err != nil {
		return fmt.Errorf("initial bootstrap: %w", err)
	}

	updates, errs := a.cfg.Serviceability.Subscribe(ctx, a.cfg.SubscribeInterval)

	bootstrapTicker := time.NewTicker(a.cfg.BootstrapInterval)
	defer bootstrapTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("Activator stopped by context", "error", ctx.Err())
			return nil

		case err, ok := <-errs:
			if !ok {
				continue
			}
			a.log.Error("Subscribe stream error", "error", err)
			metrics.Errors.WithLabelValues("subscribe").Inc()

		case u, ok := <-updates:
			if !ok {
				a.log.Warn("Update stream closed, resubscribing")
				updates, errs = a.cfg.Serviceability.Subscribe(ctx, a.cfg.SubscribeInterval)
				continue
			}
			if err := a.handleUpdate(ctx, u); err != nil {
				a.log.Error("Failed to handle account update", "pubkey", u.Pubkey, "accountType", u.AccountType, "error", err)
				metrics.Errors.WithLabelValues("handle_update").Inc()
			}

		case <-bootstrapTicker.C:
			if err := a.bootstrap(ctx); err != nil {
				a.log.Error("Periodic bootstrap failed", "error", err)
				metrics.Errors.WithLabelValues("bootstrap").Inc()
			}
		}
	}
}

// bootstrap rebuilds the mirror from a full snapshot, retrying the RPC
// fetch with exponential backoff since this runs against a cold endpoint
// at startup and periodically thereafter against a possibly-throttled one.
func (a *Activator) bootstrap(ctx context.Context) error {
	start := time.Now()

	pd, err := backoff.Retry(ctx, func() (*sc.ProgramData, error) {
		return a.cfg.Serviceability.GetProgramData(ctx)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(5))
	if err != nil {
		return fmt.Errorf("fetch program data: %w", err)
	}

	mirror, err := NewMirrorFromProgramData(a.cfg.Serviceability.ProgramID(), pd)
	if err != nil {
		return fmt.Errorf("rebuild mirror: %w", err)
	}
	a.mirror = mirror

	a.reconcilePending(ctx)

	metrics.BootstrapDurationSeconds.Set(time.Since(start).Seconds())
	a.log.Info("Bootstrap complete",
		"devices", len(mirror.Devices), "links", len(mirror.Links),
		"users", len(mirror.Users), "multicastGroups", len(mirror.MulticastGroups),
		"duration", time.Since(start),
	)
	return nil
}

// reconcilePending fans out over every device found in the fresh snapshot
// to activate anything left Pending since the last bootstrap — e.g. an
// account update missed while the event stream was down. Per-device work
// (each device's own tunnel id / dz prefix pools) runs concurrently on the
// bootstrap pool; cross-entity handlers (user, link, multicast group) run on
// the calling goroutine since they touch shared global pools.
func (a *Activator) reconcilePending(ctx context.Context) {
	group := a.pool.NewGroup()
	for _, d := range a.mirror.Devices {
		d := d
		group.Submit(func() {
			if err := a.handleDevice(ctx, d); err != nil {
				a.log.Error("Reconcile device failed", "device", solana.PublicKey(d.PubKey), "error", err)
			}
		})
	}
	group.Wait()

	for _, u := range a.mirror.Users {
		if err := a.handleUser(ctx, u); err != nil {
			a.log.Error("Reconcile user failed", "user", solana.PublicKey(u.PubKey), "error", err)
		}
	}

	for _, l := range a.mirror.Links {
		if err := a.handleLink(ctx, l); err != nil {
			a.log.Error("Reconcile link failed", "link", solana.PublicKey(l.PubKey), "error", err)
		}
	}
	for _, g := range a.mirror.MulticastGroups {
		if err := a.handleMulticastGroup(ctx, g); err != nil {
			a.log.Error("Reconcile multicast group failed", "group", solana.PublicKey(g.PubKey), "error", err)
		}
	}
}

// Close releases the activator's background resources.
func (a *Activator) Close() {
	a.inFlight.Stop()
	a.pool.StopAndWait()
}
