package changes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// backupTimeLayout gives second resolution, matching the backup name contract.
const backupTimeLayout = "20060102_150405"

// backupName builds the backup filename for a source file: the file stem, a
// timestamp token, an optional disambiguating counter, and the original
// extension. counter <= 1 means no counter suffix.
func backupName(base string, ts time.Time, counter int) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	token := ts.Format(backupTimeLayout)
	if counter > 1 {
		return fmt.Sprintf("%s_backup_%s_%d%s", stem, token, counter, ext)
	}
	return fmt.Sprintf("%s_backup_%s%s", stem, token, ext)
}

// backupPathFor returns a backup path for file that does not collide with an
// existing entry. Two edits staged within the same second get distinct names
// via the counter suffix; an existing backup is never overwritten.
func backupPathFor(file string, dir string, ts time.Time) string {
	if dir == "" {
		dir = filepath.Dir(file)
	}
	base := filepath.Base(file)
	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, backupName(base, ts, counter))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// writeBackup copies the given raw file content to a timestamped sibling of
// file (or into dir when set) and returns the backup path.
func writeBackup(file string, dir string, raw []byte, ts time.Time) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create backup dir: %w", err)
		}
	}
	path := backupPathFor(file, dir, ts)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}
