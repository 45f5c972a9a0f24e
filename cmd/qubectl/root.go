// Command qubectl builds, combines, compresses, selects from, and
// serializes qube trees from the command line.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xDarkicex/qubed/internal/config"
	"github.com/xDarkicex/qubed/internal/logging"
)

var (
	cfgFile     string
	logJSON     bool
	metricsAddr string
	cfg         config.Config

	rootCmd = &cobra.Command{
		Use:   "qubectl",
		Short: "qubectl manipulates qube trees: compressed sets of structured identifiers",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !logging.Initialised() {
				if err := initLogger(); err != nil {
					return err
				}
			}
			maybeServeMetrics(metricsAddr)
			return nil
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file (YAML/TOML/JSON)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "enable JSON log output")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")

	rootCmd.AddCommand(newUnionCmd())
	rootCmd.AddCommand(newIntersectCmd())
	rootCmd.AddCommand(newDifferenceCmd())
	rootCmd.AddCommand(newSymmetricDifferenceCmd())
	rootCmd.AddCommand(newCompressCmd())
	rootCmd.AddCommand(newSelectCmd())
	rootCmd.AddCommand(newLeavesCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newFromDatacubeCmd())
	rootCmd.AddCommand(newFromDictCmd())
}

// Execute is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		logging.Sugar().Warnf("failed to load config: %v", err)
		return
	}
	cfg = loaded
	if logJSON {
		cfg.LogJSON = true
	}
}

func initLogger() error {
	zcfg := zap.NewProductionConfig()
	if !cfg.LogJSON {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.EncoderConfig.EncodeTime = zap.TimeEncoder(func(t time.Time, enc zap.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format(time.RFC3339))
	})

	logger, err := zcfg.Build()
	if err != nil {
		return err
	}
	logging.Set(logger)
	return nil
}

func main() {
	Execute()
}
