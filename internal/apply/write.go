package apply

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/utils"
)

// TempPrefix starts the name of every in-flight write.
const TempPrefix = ".agentsync-tmp-"

const (
	tempPattern = TempPrefix + "*"
	defaultPerm = 0o644
)

var ErrIntegrity = errors.New("integrity check failed")

// writeFileWithIntegrityCheck streams body into a temp file next to path, checks its
// digest against fingerprint and only then renames it into place.
func writeFileWithIntegrityCheck(path string, body []byte, fingerprint string, perm fs.FileMode) error {
	if err := utils.EnsureParent(path); err != nil {
		return fmt.Errorf("ensure parent: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	hasher := sha256.New()
	w := io.MultiWriter(tmp, hasher)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if got := hex.EncodeToString(hasher.Sum(nil)); got != fingerprint {
		return fmt.Errorf("%w: %s: expected %s, got %s", ErrIntegrity, path, short(fingerprint), short(got))
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// verifyFile re-reads path and compares its digest with fingerprint.
func verifyFile(path, fingerprint string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if got := assets.FingerprintBytes(data); got != fingerprint {
		return fmt.Errorf("%w: %s changed after write (%s != %s)", ErrIntegrity, path, short(got), short(fingerprint))
	}
	return nil
}

// hasContent reports whether path currently holds content with the given fingerprint.
// Missing or unreadable destinations never match.
func hasContent(path, fingerprint string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return assets.FingerprintBytes(data) == fingerprint
}

func short(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}
