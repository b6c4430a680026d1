package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"datamover/internal/activity"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/requestcontext"
	"datamover/pkg/secrets"
)

const keyPrefixTag = "dmk_"

// Recorder accepts activity records for the audit trail.
type Recorder interface {
	Record(ctx context.Context, log activity.Log)
}

// Service issues, lists, revokes, and verifies service API keys.
type Service struct {
	store    KeyStore
	recorder Recorder
	logger   *slog.Logger
}

func NewService(store KeyStore, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// Issue creates a new API key and returns it together with the plaintext
// key. The plaintext is never recoverable afterwards.
func (s *Service) Issue(ctx context.Context, name string) (APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return APIKey{}, "", dErrors.New(dErrors.CodeBadRequest, "key name is required")
	}

	secret, err := secrets.Generate()
	if err != nil {
		return APIKey{}, "", dErrors.Wrap(dErrors.CodeInternal, "could not generate key", err)
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		return APIKey{}, "", dErrors.Wrap(dErrors.CodeInternal, "could not hash key", err)
	}
	prefix, err := randomPrefix()
	if err != nil {
		return APIKey{}, "", dErrors.Wrap(dErrors.CodeInternal, "could not generate key", err)
	}

	key := APIKey{
		ID:        uuid.New(),
		Name:      name,
		Prefix:    prefix,
		Hash:      hash,
		CreatedBy: requestcontext.UserID(ctx),
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, key); err != nil {
		return APIKey{}, "", dErrors.Wrap(dErrors.CodeInternal, "could not store key", err)
	}

	s.record(ctx, activity.ActionAPIKeyIssue, key, fmt.Sprintf("issued API key %q", key.Name))
	return key, keyPrefixTag + prefix + "." + secret, nil
}

// List returns all keys, revoked ones included, newest first.
func (s *Service) List(ctx context.Context) ([]APIKey, error) {
	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "could not list keys", err)
	}
	return keys, nil
}

// Revoke withdraws a key. Revoked keys fail verification immediately but
// stay listed for audit purposes.
func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Revoke(ctx, id, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "api key not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "could not revoke key", err)
	}
	s.record(ctx, activity.ActionAPIKeyRevoke, APIKey{ID: id}, "revoked API key")
	return nil
}

// VerifyKey checks a plaintext API key and returns the service identity it
// acts as. Any failure maps to the same unauthorized error so callers cannot
// probe for valid prefixes.
func (s *Service) VerifyKey(ctx context.Context, key string) (string, error) {
	prefix, secret, ok := splitKey(key)
	if !ok {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
	}

	stored, err := s.store.GetByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "could not verify key", err)
	}
	if stored.Revoked() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
	}
	if err := secrets.Verify(secret, stored.Hash); err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
	}

	if err := s.store.TouchLastUsed(ctx, stored.ID, requestcontext.Now(ctx)); err != nil {
		s.logger.WarnContext(ctx, "could not record key usage",
			"key_id", stored.ID,
			"error", err,
		)
	}
	return "svc:" + stored.Name, nil
}

func splitKey(key string) (prefix, secret string, ok bool) {
	rest, found := strings.CutPrefix(key, keyPrefixTag)
	if !found {
		return "", "", false
	}
	prefix, secret, found = strings.Cut(rest, ".")
	if !found || prefix == "" || secret == "" {
		return "", "", false
	}
	return prefix, secret, true
}

func randomPrefix() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *Service) record(ctx context.Context, actionType string, key APIKey, description string) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, activity.Log{
		UserID:            requestcontext.UserID(ctx),
		ActionType:        actionType,
		ActionDescription: description,
		ResourceType:      activity.ResourceAPIKey,
		ResourceID:        key.ID.String(),
		CreatedAt:         requestcontext.Now(ctx),
	})
}
