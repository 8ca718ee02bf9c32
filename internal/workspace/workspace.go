package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/openmined/agentsync/internal/utils"
)

const (
	logsDir  = "logs"
	lockFile = "agentsync.lock"
	logFile  = "agentsync.log"
)

var ErrWorkspaceLocked = errors.New("workspace locked by another process")

// Workspace is the state directory shared by all agentsync runs of a user,
// usually ~/.agentsync. Besides logs it holds the manifest, the client table
// override and the ignore file, whose names come from the config.
type Workspace struct {
	Root    string
	LogsDir string
	LogFile string

	flock *flock.Flock
}

func NewWorkspace(rootDir string) (*Workspace, error) {
	root, err := utils.ResolvePath(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace %s: %w", rootDir, err)
	}

	return &Workspace{
		Root:    root,
		LogsDir: filepath.Join(root, logsDir),
		LogFile: filepath.Join(root, logsDir, logFile),
		flock:   flock.New(filepath.Join(root, lockFile)),
	}, nil
}

// Setup creates the directory layout and takes the workspace lock.
func (w *Workspace) Setup() error {
	for _, dir := range []string{w.Root, w.LogsDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := w.Lock(); err != nil {
		return err
	}

	slog.Debug("workspace", "root", w.Root)
	return nil
}

// Lock fails fast with ErrWorkspaceLocked when another process holds the workspace.
func (w *Workspace) Lock() error {
	if err := utils.EnsureDir(w.Root); err != nil {
		return fmt.Errorf("create directory %s: %w", w.Root, err)
	}

	locked, err := w.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock workspace: %w", err)
	}
	if !locked {
		return ErrWorkspaceLocked
	}
	return nil
}

// Unlock releases the lock if this process holds it.
func (w *Workspace) Unlock() error {
	if !w.flock.Locked() {
		return nil
	}

	if err := w.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock workspace: %w", err)
	}

	return os.Remove(w.flock.Path())
}
