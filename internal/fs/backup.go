package fs

import (
	"fmt"
	"time"
)

// BackupMode selects how pre-images are preserved before a destructive write.
type BackupMode int

const (
	BackupNone      BackupMode = iota // no backup
	BackupSuffix                      // <path><suffix>, overwritten on every apply
	BackupTimestamp                   // <path>.<timestamp><suffix>, one per apply
)

// DefaultBackupSuffix is appended to backup file names.
const DefaultBackupSuffix = ".backup"

const backupTimeLayout = "20060102-150405"

// BackupPolicy decides whether and where a pre-image is written.
type BackupPolicy struct {
	Mode   BackupMode
	Suffix string           // defaults to DefaultBackupSuffix
	Now    func() time.Time // defaults to time.Now
}

// ParseBackupMode maps a flag value to a BackupMode.
func ParseBackupMode(s string) (BackupMode, error) {
	switch s {
	case "", "none":
		return BackupNone, nil
	case "suffix":
		return BackupSuffix, nil
	case "timestamp":
		return BackupTimestamp, nil
	}
	return BackupNone, fmt.Errorf("unknown backup style %q (want suffix or timestamp)", s)
}

// Enabled reports whether the policy writes backups.
func (p BackupPolicy) Enabled() bool {
	return p.Mode != BackupNone
}

// PathFor returns the sibling path the pre-image of path is written to.
func (p BackupPolicy) PathFor(path string) string {
	suffix := p.Suffix
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	if p.Mode == BackupTimestamp {
		now := time.Now
		if p.Now != nil {
			now = p.Now
		}
		return fmt.Sprintf("%s.%s%s", path, now().UTC().Format(backupTimeLayout), suffix)
	}
	return path + suffix
}

// Write stores content as the backup of path and returns the backup path. It is a no-op
// when backups are disabled.
func (p BackupPolicy) Write(s Storage, path, content string) (string, error) {
	if !p.Enabled() {
		return "", nil
	}
	backupPath := p.PathFor(path)
	return backupPath, s.WriteFile(backupPath, content)
}
