package activator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

var (
	ErrLoggerRequired         = errors.New("logger is required")
	ErrServiceabilityRequired = errors.New("serviceability client is required")
	ErrExecutorRequired       = errors.New("executor is required")
)

const (
	defaultSubscribeInterval   = 5 * time.Second
	defaultBootstrapInterval   = 10 * time.Minute
	defaultInFlightTTL         = 2 * time.Minute
	defaultBootstrapPoolSize   = 8
)

// ServiceabilityClient is the subset of *serviceability.Client the
// activator depends on: fetching a full snapshot for bootstrap and
// streaming incremental updates thereafter.
type ServiceabilityClient interface {
	ProgramID() solana.PublicKey
	GetProgramData(ctx context.Context) (*sc.ProgramData, error)
	Subscribe(ctx context.Context, interval time.Duration) (<-chan sc.AccountUpdate, <-chan error)
}

// Executor submits a built instruction and waits for it to land, matching
// sdk/serviceability/go's concrete *Executor.
type Executor interface {
	ExecuteTransaction(ctx context.Context, op sc.Opcode, args any, accounts []sc.AccountMeta) (solana.Signature, error)
}

type Config struct {
	Logger         *slog.Logger
	Serviceability ServiceabilityClient
	Executor       Executor

	SubscribeInterval time.Duration
	BootstrapInterval time.Duration
	InFlightTTL       time.Duration
	BootstrapPoolSize int
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return ErrLoggerRequired
	}
	if c.Serviceability == nil {
		return ErrServiceabilityRequired
	}
	if c.Executor == nil {
		return ErrExecutorRequired
	}
	if c.SubscribeInterval <= 0 {
		c.SubscribeInterval = defaultSubscribeInterval
	}
	if c.BootstrapInterval <= 0 {
		c.BootstrapInterval = defaultBootstrapInterval
	}
	if c.InFlightTTL <= 0 {
		c.InFlightTTL = defaultInFlightTTL
	}
	if c.BootstrapPoolSize <= 0 {
		c.BootstrapPoolSize = defaultBootstrapPoolSize
	}
	return nil
}
