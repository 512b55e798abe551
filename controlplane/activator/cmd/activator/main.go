package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/dz-network/doublezero/config"
	"github.com/dz-network/doublezero/controlplane/activator/internal/activator"
	"github.com/dz-network/doublezero/controlplane/activator/internal/metrics"
	serviceability "github.com/dz-network/doublezero/sdk/serviceability/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	env                     = flag.String("env", "", "the environment to run the activator in (devnet, testnet, mainnet-beta)")
	ledgerRPCURL            = flag.String("ledger-rpc-url", "", "the url of the ledger rpc")
	serviceabilityProgramID = flag.String("serviceability-program-id", "", "the id of the serviceability program")
	keypairPath             = flag.String("keypair", "", "the path to the activator authority keypair")
	subscribeInterval       = flag.Duration("subscribe-interval", 5*time.Second, "the interval to poll for account updates")
	bootstrapInterval       = flag.Duration("bootstrap-interval", 10*time.Minute, "the interval to rebuild the full mirror from a snapshot")
	inFlightTTL             = flag.Duration("in-flight-ttl", 2*time.Minute, "how long a pubkey stays marked in-flight after an activation attempt")
	bootstrapPoolSize       = flag.Int("bootstrap-pool-size", 8, "the number of concurrent workers used to reconcile a fresh snapshot")
	verbose                 = flag.Bool("verbose", false, "enable verbose logging")
	showVersion             = flag.Bool("version", false, "print the version of the activator and exit")
	metricsEnable           = flag.Bool("metrics-enable", false, "enable prometheus metrics")
	metricsAddr             = flag.String("metrics-addr", ":8080", "address to listen on for prometheus metrics")

	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s, commit: %s, date: %s\n", version, commit, date)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	}))

	if *env == "" {
		if *ledgerRPCURL == "" {
			log.Error("Missing required flag", "flag", "ledger-rpc-url")
			flag.Usage()
			os.Exit(1)
		}
		if *serviceabilityProgramID == "" {
			log.Error("Missing required flag", "flag", "serviceability-program-id")
			flag.Usage()
			os.Exit(1)
		}
	} else {
		networkConfig, err := config.NetworkConfigForEnv(*env)
		if err != nil {
			log.Error("Failed to get network config", "error", err)
			flag.Usage()
			os.Exit(1)
		}
		*ledgerRPCURL = networkConfig.LedgerPublicRPCURL
		*serviceabilityProgramID = networkConfig.ServiceabilityProgramID.String()
	}
	if *keypairPath == "" {
		log.Error("Missing required flag", "flag", "keypair")
		flag.Usage()
		os.Exit(1)
	}

	if *metricsEnable {
		metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
		go func() {
			listener, err := net.Listen("tcp", *metricsAddr)
			if err != nil {
				log.Error("Failed to start prometheus metrics server listener", "error", err)
				return
			}
			log.Info("Prometheus metrics server listening", "address", listener.Addr().String())
			http.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, nil); err != nil {
				log.Error("Failed to start prometheus metrics server", "error", err)
			}
		}()
	}

	if _, err := os.Stat(*keypairPath); os.IsNotExist(err) {
		log.Error("Activator authority keypair does not exist", "path", *keypairPath)
		os.Exit(1)
	}
	keypair, err := solana.PrivateKeyFromSolanaKeygenFile(*keypairPath)
	if err != nil {
		log.Error("Failed to load activator authority keypair", "error", err)
		os.Exit(1)
	}

	programID, err := solana.PublicKeyFromBase58(*serviceabilityProgramID)
	if err != nil {
		log.Error("Failed to parse program ID", "error", err)
		os.Exit(1)
	}

	log.Info("Starting activator",
		"version", version,
		"ledgerRPCURL", *ledgerRPCURL,
		"serviceabilityProgramID", programID,
		"keypairPath", *keypairPath,
		"subscribeInterval", *subscribeInterval,
		"bootstrapInterval", *bootstrapInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rpcClient := solanarpc.New(*ledgerRPCURL)
	serviceabilityClient := serviceability.New(rpcClient, programID)
	executor := serviceability.NewExecutor(rpcClient, programID, keypair)

	a, err := activator.New(activator.Config{
		Logger:            log,
		Serviceability:    serviceabilityClient,
		Executor:          executor,
		SubscribeInterval: *subscribeInterval,
		BootstrapInterval: *bootstrapInterval,
		InFlightTTL:       *inFlightTTL,
		BootstrapPoolSize: *bootstrapPoolSize,
	})
	if err != nil {
		log.Error("Failed to create activator", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error("Activator exited with error", "error", err)
		os.Exit(1)
	}
}
