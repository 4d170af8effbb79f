package entity

import "time"

// Backup describes one uploaded copy of the stored collection.
type Backup struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// SecretEncoding names how an imported raw seed is encoded.
type SecretEncoding string

const (
	SecretEncodingBase32 SecretEncoding = "base32"
	// SecretEncodingBase64 is used by Microsoft personal accounts.
	SecretEncodingBase64 SecretEncoding = "base64"
)

// ImportFailure explains why one import item was rejected.
type ImportFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported []Secret
	Skipped  int
	Failures []ImportFailure
}

// MigrateResult reports what a migration did.
type MigrateResult struct {
	Migrated bool
	Count    int
}
