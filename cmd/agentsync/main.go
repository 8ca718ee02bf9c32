package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/agentsync/internal/config"
	"github.com/openmined/agentsync/internal/utils"
	"github.com/openmined/agentsync/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

var rootCmd = &cobra.Command{
	Use:   "agentsync",
	Short: "Keep agent instructions, commands, rules and MCP configs in sync across AI clients",
	Long: `agentsync discovers agent assets (AGENTS.md files, commands, rules, skills, prompts
and MCP server configs) in every known client directory, detects conflicting versions,
and writes one reconciled copy to each client in its native layout.`,
	Version:       version.Detailed(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	addPersistentFlags(rootCmd)
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default ~/.agentsync/config.yaml)")
	cmd.PersistentFlags().StringP("project", "p", "", "project directory (default: nearest directory with .git, .agents or AGENTS.md)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
}

func main() {
	slog.SetDefault(slog.New(stderrHandler(os.Stderr, false)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red.Render("error:"), err)
		os.Exit(1)
	}
}

func stderrHandler(w *os.File, verbose bool) slog.Handler {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	})
}

// setupLogging fans records out to stderr and to the workspace log file. The file
// always gets debug output.
func setupLogging(logFile io.Writer, verbose bool) *utils.LogInterceptor {
	interceptor := utils.NewLogInterceptor(logFile)
	fileHandler := slog.NewTextHandler(interceptor, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		// the interceptor stamps each line already
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(stderrHandler(os.Stderr, verbose), fileHandler)))
	return interceptor
}

// loadConfig merges defaults, the config file, AGENTSYNC_* variables, the project's
// .env and command flags, in increasing precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	project, err := resolveProjectDir(cmd)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flag("project"); f != nil && f.Changed {
		v.Set("project_dir", project)
	} else {
		v.SetDefault("project_dir", project)
	}
	if err := config.LoadDotEnv(project); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	for _, key := range []string{"clients_file", "manifest_path", "ignore"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if cfgFlag := cmd.Flag("config"); cfgFlag != nil && cfgFlag.Changed {
		v.SetConfigFile(cfgFlag.Value.String())
	} else {
		v.AddConfigPath(v.GetString("config_dir"))
		v.SetConfigName(config.ConfigFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		var notFound viper.ConfigFileNotFoundError
		if !enoent && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	return config.Load(v)
}

// bindFlags maps the flags a command defines onto config keys. Flags a command
// does not have are skipped.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	keys := map[string]string{
		"local":    "local_client",
		"strategy": "strategy",
		"priority": "priority",
		"link":     "link",
	}
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// resolveProjectDir honors --project, then AGENTSYNC_PROJECT_DIR, then the nearest
// project root above the working directory, then the working directory itself.
func resolveProjectDir(cmd *cobra.Command) (string, error) {
	if f := cmd.Flag("project"); f != nil && f.Changed {
		return utils.ResolvePath(f.Value.String())
	}
	if env := os.Getenv(config.EnvPrefix + "_PROJECT_DIR"); env != "" {
		return utils.ResolvePath(env)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	if root, ok := utils.FindProjectRoot(wd); ok {
		return root, nil
	}
	return filepath.Clean(wd), nil
}
