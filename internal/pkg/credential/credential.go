// Package credential manages the single operator password of the vault.
//
// The password is never stored. Only a salted PBKDF2 record lives in the
// key-value store, and the derived hash doubles as the session signing key.
// Once written the record is immutable: there is no password change path.
package credential

import (
	"context"
	"errors"
	"strings"

	"github.com/shandysiswandi/seedvault/internal/pkg/goerror"
	"github.com/shandysiswandi/seedvault/internal/pkg/hash"
	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
)

const (
	// KeyCredential is the storage key of the credential record.
	KeyCredential = "auth:credential"
	// KeySetupCompleted is the storage key of the setup marker.
	KeySetupCompleted = "auth:setup_completed"
)

type hasher interface {
	Hash(password string) (hash.Record, error)
	Verify(rec hash.Record, password string) bool
}

// Manager hashes, stores and verifies the operator password.
type Manager struct {
	store  kvstore.Store
	hasher hasher
}

// NewManager returns a Manager backed by store.
func NewManager(store kvstore.Store, hasher hasher) *Manager {
	return &Manager{store: store, hasher: hasher}
}

// SetCredential validates password against the policy, hashes it and stores
// the record. It fails with a conflict if a credential already exists.
func (m *Manager) SetCredential(ctx context.Context, password string) error {
	if violations := CheckPolicy(password); len(violations) > 0 {
		return goerror.NewValidation("Password does not meet the policy", "password", strings.Join(violations, "; "))
	}

	exists, err := m.HasCredential(ctx)
	if err != nil {
		return err
	}
	if exists {
		return goerror.NewConflict("Credential already exists")
	}

	rec, err := m.hasher.Hash(password)
	if err != nil {
		return goerror.NewServer(err)
	}

	if err := m.store.Put(ctx, KeyCredential, []byte(rec.String())); err != nil {
		return goerror.NewServer(err)
	}

	return nil
}

// VerifyCredential reports whether password matches the stored record.
// A mismatch is (false, nil); only a missing or corrupt record is an error.
func (m *Manager) VerifyCredential(ctx context.Context, password string) (bool, error) {
	rec, err := m.record(ctx)
	if err != nil {
		return false, err
	}

	return m.hasher.Verify(rec, password), nil
}

// SigningKey returns the stored hash used to sign session tokens.
func (m *Manager) SigningKey(ctx context.Context) ([]byte, error) {
	rec, err := m.record(ctx)
	if err != nil {
		return nil, err
	}

	return rec.Hash, nil
}

// HasCredential reports whether a credential record exists.
func (m *Manager) HasCredential(ctx context.Context) (bool, error) {
	_, err := m.store.Get(ctx, KeyCredential)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, goerror.NewServer(err)
	}
	return true, nil
}

// SetupCompleted reports whether the one-time setup has finished.
func (m *Manager) SetupCompleted(ctx context.Context) (bool, error) {
	val, err := m.store.Get(ctx, KeySetupCompleted)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, goerror.NewServer(err)
	}
	return string(val) == "true", nil
}

// MarkSetupCompleted records that setup has finished.
func (m *Manager) MarkSetupCompleted(ctx context.Context) error {
	if err := m.store.Put(ctx, KeySetupCompleted, []byte("true")); err != nil {
		return goerror.NewServer(err)
	}
	return nil
}

func (m *Manager) record(ctx context.Context) (hash.Record, error) {
	raw, err := m.store.Get(ctx, KeyCredential)
	if errors.Is(err, kvstore.ErrNotFound) {
		return hash.Record{}, goerror.NewAuthorization("Setup has not been completed")
	}
	if err != nil {
		return hash.Record{}, goerror.NewServer(err)
	}

	rec, err := hash.ParseRecord(string(raw))
	if err != nil {
		return hash.Record{}, goerror.Wrap(goerror.KindInternal, "Stored credential is corrupted", err)
	}
	return rec, nil
}
