package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dshills/botflow/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const (
	// Version is the current version of botflow
	Version = "1.0.0"

	configDirEnv = "BOTFLOW_CONFIG_DIR"
)

// Options holds the root command's persistent flags.
type Options struct {
	ConfigDir string
	Debug     bool
}

// GlobalConfig is the shared flag instance
var GlobalConfig = &Options{}

// NewRootCommand creates the root cobra command for botflow
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:   "botflow",
		Short: "botflow - edit chatbot dialog flows from the terminal",
		Long: `botflow browses the bot templates of a chatbot back office and edits their
dialog flows: nodes such as greetings, WhatsApp hand-overs and chatbot
replies, joined by connections, with response buttons on each node.

Graphs can be edited in the terminal UI, exported to YAML or JSON, imported
back as local drafts, and validated against the graph schema.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			cfg, err := LoadConfig(GetConfigDir())
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = logging.New(logging.Level(GlobalConfig.Debug))
			rt.registry = prometheus.NewRegistry()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if GlobalConfig.Debug {
				logRequestMetrics(rt.logger, rt.registry)
			}
			return rt.close()
		},
	}

	cmd.PersistentFlags().BoolVar(&GlobalConfig.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&GlobalConfig.ConfigDir, "config-dir", "", "Configuration directory (default: ~/.botflow)")

	cmd.AddCommand(newLoginCommand(rt))
	cmd.AddCommand(newLogoutCommand(rt))
	cmd.AddCommand(newWhoamiCommand(rt))
	cmd.AddCommand(newTemplatesCommand(rt))
	cmd.AddCommand(newFlowsCommand(rt))
	cmd.AddCommand(newPublishCommand(rt))
	cmd.AddCommand(newEditCommand(rt))
	cmd.AddCommand(newExportCommand(rt))
	cmd.AddCommand(newImportCommand(rt))
	cmd.AddCommand(newDraftsCommand(rt))
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(newMockAPICommand(rt))

	return cmd
}

// initConfig creates the configuration directory.
func initConfig() error {
	if envDir := os.Getenv(configDirEnv); envDir != "" {
		GlobalConfig.ConfigDir = envDir
	} else if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		GlobalConfig.ConfigDir = filepath.Join(homeDir, ".botflow")
	}

	if err := os.MkdirAll(GlobalConfig.ConfigDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
// Priority order: 1) BOTFLOW_CONFIG_DIR env var, 2) --config-dir, 3) ~/.botflow
func GetConfigDir() string {
	if envDir := os.Getenv(configDirEnv); envDir != "" {
		return envDir
	}
	if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".botflow"
		}
		return filepath.Join(homeDir, ".botflow")
	}
	return GlobalConfig.ConfigDir
}

// logRequestMetrics writes the API request counters at debug level.
func logRequestMetrics(logger *slog.Logger, reg *prometheus.Registry) {
	if logger == nil || reg == nil {
		return
	}
	families, err := reg.Gather()
	if err != nil {
		logger.Debug("gathering metrics failed", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				attrs = append(attrs, "count", m.GetHistogram().GetSampleCount(),
					"sum_seconds", m.GetHistogram().GetSampleSum())
			}
			logger.Debug("api metrics", attrs...)
		}
	}
}
