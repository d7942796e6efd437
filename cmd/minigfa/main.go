// Package main provides the minigfa command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Configuration keys
const (
	keyGraphStrict     = "graph.strict"
	keyGraphIndexCache = "graph.index_cache"
	keyCacheDir        = "cache.dir"
	keyCacheOffsets    = "cache.offsets"
	keyResolveWorkers  = "resolve.workers"
)

// logger is replaced in the root command's pre-run hook.
var logger = zap.NewNop()

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "minigfa",
		Short: "Random access to FASTA genomes and GFA graphs",
		Long: `minigfa extracts reference sequence by coordinates, reads segments and
paths of a GFA graph without loading it into memory, and lifts gene
annotations onto a path through a gene-scoped subgraph.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.minigfa.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages to stderr")

	cmd.AddCommand(newFaidxCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newSegmentCmd())
	cmd.AddCommand(newPathCmd())
	cmd.AddCommand(newOffsetCmd())
	cmd.AddCommand(newRewriteCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.minigfa.yaml (or cfgFile) and MINIGFA_* environment variables.
func initConfig(cfgFile string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	viper.SetDefault(keyGraphStrict, false)
	viper.SetDefault(keyGraphIndexCache, true)
	viper.SetDefault(keyCacheDir, filepath.Join(home, ".minigfa"))
	viper.SetDefault(keyCacheOffsets, true)
	viper.SetDefault(keyResolveWorkers, runtime.NumCPU())

	viper.SetEnvPrefix("MINIGFA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".minigfa")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (cfgFile != "" && errors.Is(err, os.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return cfg.Build()
}
