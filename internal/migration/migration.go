package migration

import (
	"crypto/sha256"
	"encoding/hex"
)

// Migration is one Rails migration file loaded from disk.
type Migration struct {
	Version  string // "20240101120000", empty when the filename has no version prefix
	Name     string // "add_index_to_users_name"
	Source   string // Ruby source text
	Checksum string // SHA-256 hex digest of Source as read
	FilePath string
}

// WithSource returns a copy of m carrying corrected source text. Checksum keeps
// describing the file on disk.
func (m Migration) WithSource(src string) Migration {
	m.Source = src

	return m
}

// ComputeChecksum returns the SHA-256 hex digest of the given source.
func ComputeChecksum(src string) string {
	h := sha256.Sum256([]byte(src))

	return hex.EncodeToString(h[:])
}
