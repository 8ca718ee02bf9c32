package apply

import (
	"fmt"
	"os"
	"strings"

	"github.com/openmined/agentsync/internal/utils"
)

// DefaultBackupSuffix is appended to a destination path to name its backup.
const DefaultBackupSuffix = ".agentsync.bak"

// BackupPath names the sibling backup of dest.
func BackupPath(dest, suffix string) string {
	return dest + suffix
}

// IsBackup reports whether path is itself a backup file.
func IsBackup(path, suffix string) bool {
	return strings.HasSuffix(path, suffix)
}

// backupFile copies dest aside and returns the backup path. An existing backup is
// overwritten so only the state before the latest write is kept.
func backupFile(dest, suffix string) (string, error) {
	bak := BackupPath(dest, suffix)
	if utils.IsSymlink(bak) {
		if err := os.Remove(bak); err != nil {
			return "", fmt.Errorf("remove stale backup link: %w", err)
		}
	}
	if err := utils.CopyFile(dest, bak); err != nil {
		return "", fmt.Errorf("backup %s: %w", dest, err)
	}
	return bak, nil
}
