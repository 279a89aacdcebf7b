package cmd

import (
	"fmt"
	"os"
	"strings"

	"codeparity/internal/application/common/logging"
	"codeparity/internal/application/common/slogger"
	"codeparity/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "codeparity",
	Short: "A structural source code equivalence checker",
	Long: `CodeParity decides whether two pieces of source code are structurally
equivalent by parsing both into syntax trees and comparing them node by
node, ignoring formatting and whitespace.

The system supports:
- Per-language grammars loaded through tree-sitter
- Human-readable difference reports with tree paths
- A whitespace-normalized fallback for languages without a grammar
- A NATS worker serving comparison requests over request/reply
- Optional outcome recording in PostgreSQL`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format (json, text)")

	// Bind flags to viper
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
	}
	if err := viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-format flag: %v\n", err)
	}

	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newWorkerCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func initConfig() {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix("CODEPARITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
		// Config file not found; use defaults and environment
	}

	cfg = config.New(v)

	logger, err := logging.NewApplicationLogger(logging.Config{
		Level:  strings.ToUpper(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		return
	}
	slogger.SetGlobalLogger(logger)
}

func setDefaults(v *viper.Viper) {
	// Worker defaults
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.queue_group", "parity-workers")
	v.SetDefault("worker.subject", "parity.compare.request")
	v.SetDefault("worker.job_timeout", "30s")

	// NATS defaults
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", 5)
	v.SetDefault("nats.reconnect_wait", "2s")

	// Database defaults (recording is off unless enabled)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "codeparity")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 10)

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}
