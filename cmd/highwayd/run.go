package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"golang.org/x/crypto/ed25519"

	"github.com/casperlabs/highway-era-supervisor/common/clock"
	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/common/logging"
	"github.com/casperlabs/highway-era-supervisor/common/metrics"
	"github.com/casperlabs/highway-era-supervisor/forkchoice/simple"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
	relaylog "github.com/casperlabs/highway-era-supervisor/relay/logging"
	relaynoop "github.com/casperlabs/highway-era-supervisor/relay/noop"
	"github.com/casperlabs/highway-era-supervisor/storage/eradb"
	"github.com/casperlabs/highway-era-supervisor/supervisor"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the era supervisor until interrupted",
		RunE:  doRun,
	}
	cmd.Flags().Uint(cfgGenesisRounds, 16, "number of rounds the genesis era runs before handing off to a child era")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

const cfgGenesisRounds = "genesis_rounds"

func doRun(cmd *cobra.Command, args []string) error {
	lvl, err := logging.LogLevel(viper.GetString(cfgLogLevel))
	if err != nil {
		return err
	}
	format, err := logging.LogFormat(viper.GetString(cfgLogFormat))
	if err != nil {
		return err
	}
	if err := logging.Initialize(os.Stdout, lvl, format); err != nil {
		return err
	}
	logger := logging.GetLogger("cmd/highwayd")

	closer, err := initTracing()
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	metricsCollectors := metrics.New(reg)
	if addr := viper.GetString(cfgMetricsAddr); addr != "" {
		go serveMetrics(addr, reg, logger)
	}

	storage, err := openStorage()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	bonded, err := parseBondedValidator(viper.GetString(cfgBondedValidator))
	if err != nil {
		return fmt.Errorf("parse %s: %w", cfgBondedValidator, err)
	}

	tickUnit := viper.GetDuration(cfgTickUnit)
	if tickUnit <= 0 {
		tickUnit = 500 * time.Millisecond
	}
	conf := clock.HighwayConf{
		TickUnit:          tickUnit,
		InitRoundExponent: viper.GetUint(cfgInitRoundExponent),
	}
	clk := clock.WallClockSource{Conf: conf, Epoch: time.Now()}

	genesis := buildGenesis(conf, viper.GetUint(cfgGenesisRounds), bonded)

	relay, err := openRelay(viper.GetString(cfgRelay))
	if err != nil {
		return fmt.Errorf("open relay: %w", err)
	}

	cfg := supervisor.Config{
		Storage:         storage,
		Relay:           relay,
		ForkChoice:      simple.New(),
		Clock:           clk,
		HighwayConf:     conf,
		GenesisSummary:  genesis,
		BondedValidator: bonded,
		Metrics:         metricsCollectors,
	}

	ctx, cancel := context.WithCancel(context.Background())
	sup, err := supervisor.Open(ctx, cfg)
	if err != nil {
		cancel()
		return fmt.Errorf("bootstrap supervisor: %w", err)
	}
	logger.Info("supervisor started", "genesis", genesis.KeyBlockHash.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()
	return sup.Shutdown()
}

func initTracing() (io.Closer, error) {
	addr := viper.GetString(cfgJaeger)
	if addr == "" {
		opentracing.SetGlobalTracer(opentracing.NoopTracer{})
		return io.NopCloser(nil), nil
	}

	jcfg := jaegercfg.Configuration{
		ServiceName: "highwayd",
		Sampler:     &jaegercfg.SamplerConfig{Type: "const", Param: 1},
		Reporter:    &jaegercfg.ReporterConfig{LogSpans: true, LocalAgentHostPort: addr},
	}
	tracer, closer, err := jcfg.NewTracer()
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server exited", "err", err)
	}
}

func openStorage() (api.EraStorage, error) {
	dir := viper.GetString(cfgDataDir)
	if dir == "" {
		return eradb.NewMemory(), nil
	}
	return eradb.NewBadgerDB(dir)
}

func openRelay(kind string) (api.Relaying, error) {
	switch kind {
	case "", "logging":
		return relaylog.New(), nil
	case "noop":
		return relaynoop.New(), nil
	default:
		return nil, fmt.Errorf("unknown %s %q", cfgRelay, kind)
	}
}

func parseBondedValidator(s string) (*message.ValidatorID, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	v, ok := message.ValidatorIDFromPublicKey(ed25519.PublicKey(raw))
	if !ok {
		return nil, fmt.Errorf("expected %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return &v, nil
}

func buildGenesis(conf clock.HighwayConf, rounds uint, bonded *message.ValidatorID) api.Era {
	validators := []message.ValidatorID{}
	if bonded != nil {
		validators = append(validators, *bonded)
	}
	length := conf.RoundLength(conf.InitRoundExponent)
	return api.Era{
		KeyBlockHash:       hash.FromBytes([]byte("genesis")),
		ParentKeyBlockHash: hash.Hash{},
		StartTick:          0,
		EndTick:            length * clock.Tick(rounds),
		BondedValidators:   validators,
		LeaderSeed:         hash.FromBytes([]byte("genesis-seed")),
	}
}
