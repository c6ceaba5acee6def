// Package metadata provides run metadata for projected documents: who
// produced them, with which configuration, and a hash to detect edits.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Metadata verification errors.
var (
	ErrNoMetadata   = errors.New("no metadata found")
	ErrNoHashFound  = errors.New("no hash found in metadata")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Metadata describes one run that produced a document.
type Metadata struct {
	RunID       string    `json:"runId"`
	Tool        string    `json:"tool"`
	GeneratedAt time.Time `json:"generatedAt"`
	ConfigHash  string    `json:"configHash,omitempty"`
	EntriesHash string    `json:"entriesHash,omitempty"`
	Entries     int       `json:"entries"`
}

// New creates metadata for a run of tool with a fresh run id.
func New(tool, configHash string) *Metadata {
	return &Metadata{
		RunID:       uuid.New().String(),
		Tool:        tool,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		ConfigHash:  configHash,
	}
}

// CalculateHash computes the SHA-256 of the JSON encoding of entries. Map
// keys are encoded in sorted order, so equal entries hash equally.
func CalculateHash(entries any) (string, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode entries: %w", err)
	}

	hash := sha256.Sum256(data)

	return hex.EncodeToString(hash[:]), nil
}

// Sign records the hash and count of entries.
func (m *Metadata) Sign(entries any, count int) error {
	hash, err := CalculateHash(entries)
	if err != nil {
		return err
	}

	m.EntriesHash = hash
	m.Entries = count

	return nil
}

// Verify checks that entries still match the signed hash.
func Verify(m *Metadata, entries any) (bool, error) {
	if m == nil {
		return false, ErrNoMetadata
	}

	if m.EntriesHash == "" {
		return false, ErrNoHashFound
	}

	calculated, err := CalculateHash(entries)
	if err != nil {
		return false, err
	}

	if calculated != m.EntriesHash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, m.EntriesHash, calculated)
	}

	return true, nil
}
