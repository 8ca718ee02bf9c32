package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/clients"
	"github.com/openmined/agentsync/internal/config"
	"github.com/openmined/agentsync/internal/discovery"
	"github.com/openmined/agentsync/internal/manifest"
	"github.com/openmined/agentsync/internal/report"
	"github.com/openmined/agentsync/internal/syncer"
	"github.com/openmined/agentsync/internal/utils"
	"github.com/openmined/agentsync/internal/workspace"
	"github.com/spf13/cobra"
)

// app holds everything a command needs for one invocation.
type app struct {
	cfg     *config.Config
	ws      *workspace.Workspace
	table   *clients.Table
	ignore  *discovery.IgnoreList
	store   *manifest.SQLiteStore
	syncer  *syncer.Syncer
	printer *report.Printer

	logFile *os.File
	logs    *utils.LogInterceptor
}

type appOptions struct {
	// writes takes the workspace lock and opens the manifest.
	writes bool
	types  []assets.AssetType
}

func newApp(cmd *cobra.Command, opts appOptions) (_ *app, err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, printer: report.New(cmd.OutOrStdout())}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.ws, err = workspace.NewWorkspace(cfg.ConfigDir); err != nil {
		return nil, err
	}
	if opts.writes {
		err = a.ws.Setup()
	} else {
		err = utils.EnsureDir(a.ws.LogsDir)
	}
	if err != nil {
		return nil, err
	}

	a.logFile, err = os.OpenFile(a.ws.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	a.logs = setupLogging(a.logFile, verbose)
	slog.Debug("config", "path", cfg.Path, "project", cfg.ProjectDir, "workspace", a.ws.Root)

	base := clients.Defaults(cfg.HomeDir, cfg.ProjectDir)
	if a.table, err = clients.Load(cfg.ClientsFile, base, cfg.HomeDir, cfg.ProjectDir); err != nil {
		return nil, err
	}

	a.ignore = discovery.NewIgnoreList(cfg.ConfigDir, append([]string{"*" + cfg.BackupSuffix}, cfg.Ignore...)...)
	a.ignore.Load()

	scanner := discovery.NewScanner(a.table.All(),
		discovery.WithIgnore(a.ignore),
		discovery.WithCache(discovery.NewReadCache(discovery.DefaultCacheSize)),
		discovery.WithConcurrency(cfg.Concurrency),
		discovery.WithTypes(opts.types...),
	)

	var store manifest.Store
	if opts.writes {
		if a.store, err = manifest.OpenSQLiteStore(cfg.ManifestPath); err != nil {
			return nil, err
		}
		store = a.store
	}
	a.syncer = syncer.New(a.table, scanner, store)

	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.ws != nil {
		errs = append(errs, a.ws.Unlock())
	}
	if a.logs != nil {
		slog.SetDefault(slog.New(stderrHandler(os.Stderr, false)))
		errs = append(errs, a.logs.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}
