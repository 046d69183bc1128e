package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	cfgTickUnit          = "tick_unit_ms"
	cfgInitRoundExponent = "init_round_exponent"
	cfgDataDir           = "data_dir"
	cfgMetricsAddr       = "metrics_addr"
	cfgLogLevel          = "log_level"
	cfgLogFormat         = "log_format"
	cfgBondedValidator   = "bonded_validator"
	cfgJaeger            = "jaeger_agent_addr"
	cfgRelay             = "relay"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "highwayd",
		Short: "Highway era supervisor node",
	}

	root.PersistentFlags().Duration(cfgTickUnit, 0, "wall-clock duration of one tick (e.g. 500ms)")
	root.PersistentFlags().Uint(cfgInitRoundExponent, 4, "initial round length as 2^n ticks")
	root.PersistentFlags().String(cfgDataDir, "", "on-disk data directory (empty: in-memory storage)")
	root.PersistentFlags().String(cfgMetricsAddr, "", "prometheus exposition listen address (empty: disabled)")
	root.PersistentFlags().String(cfgLogLevel, "INFO", "log level: DEBUG, INFO, WARN, ERROR")
	root.PersistentFlags().String(cfgLogFormat, "LOGFMT", "log format: LOGFMT, JSON")
	root.PersistentFlags().String(cfgBondedValidator, "", "hex-encoded ed25519 public key of this node's bonded validator identity, if any")
	root.PersistentFlags().String(cfgJaeger, "", "Jaeger agent address (empty: tracing disabled)")
	root.PersistentFlags().String(cfgRelay, "logging", "Relaying adapter: logging, noop")

	if err := viper.BindPFlags(root.PersistentFlags()); err != nil {
		panic(err)
	}

	root.AddCommand(newRunCommand())
	return root
}
