package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/wikiquiz/internal/config"
	"github.com/abhisek/wikiquiz/internal/llm"
	"github.com/abhisek/wikiquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "wikiquiz",
	Short: "Generate multiple-choice quizzes from Wikipedia articles",
	Long: "wikiquiz resolves a topic to a Wikipedia article, samples its text and asks an LLM " +
		"to write multiple-choice questions about it.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WIKIQUIZ_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (default $XDG_CONFIG_HOME/wikiquiz/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(languagesCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then WIKIQUIZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// env bundles what most commands need. Close releases the store and
// flushes the logger.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(cfg.LogLevel, verbose)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("opened database", zap.String("path", dbPath))

	return &env{cfg: cfg, logger: logger, store: st}, nil
}

func (e *env) registry() *llm.Registry {
	return llm.NewRegistry(e.cfg.LLM, e.store.EventRepo(), e.logger)
}

func (e *env) Close() {
	e.store.Close()
	e.logger.Sync()
}

// newLogger builds a JSON logger on stderr at level, or a development
// console logger at debug level when verbose is set.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	return zapConfig.Build()
}
