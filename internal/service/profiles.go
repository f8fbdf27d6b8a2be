package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/iliyamo/court-reservation/internal/identity"
	"github.com/iliyamo/court-reservation/internal/model"
)

// ProfileStore persists profiles.
type ProfileStore interface {
	Get(ctx context.Context, uid string) (model.Profile, error)
	Upsert(ctx context.Context, uid string, p model.Profile) error
	SetPicture(ctx context.Context, uid, url string) error
}

// NameUpdater propagates display names to the identity provider.
type NameUpdater interface {
	Update(ctx context.Context, id identity.Identity, name string) error
}

// AvatarUploader stores profile pictures and returns their public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, uid, contentType string, body io.Reader, size int64) (string, error)
}

// ErrAvatarsDisabled is returned when no object store is configured.
var ErrAvatarsDisabled = errors.New("avatar uploads are not configured")

// MaxAvatarBytes bounds profile picture uploads.
const MaxAvatarBytes = 5 << 20

// Profiles manages user profiles.
type Profiles struct {
	store   ProfileStore
	names   NameUpdater
	avatars AvatarUploader
	logger  *slog.Logger
}

// NewProfiles wires the service.  names and avatars may be nil.
func NewProfiles(store ProfileStore, names NameUpdater, avatars AvatarUploader, logger *slog.Logger) *Profiles {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiles{store: store, names: names, avatars: avatars, logger: logger}
}

// Get returns the profile of uid.
func (s *Profiles) Get(ctx context.Context, uid string) (model.Profile, error) {
	return s.store.Get(ctx, uid)
}

// Save validates and stores p for the caller and updates the provider
// display name.  A failing provider update is logged, the profile stays
// saved.
func (s *Profiles) Save(ctx context.Context, id identity.Identity, p model.Profile) (model.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Cedula = strings.TrimSpace(p.Cedula)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if err := ValidateProfile(p); err != nil {
		return model.Profile{}, err
	}
	if err := s.store.Upsert(ctx, id.Subject, p); err != nil {
		return model.Profile{}, err
	}
	if s.names != nil {
		if err := s.names.Update(ctx, id, p.FullName()); err != nil {
			s.logger.Warn("update display name failed", "subject", id.Subject, "provider", id.Provider, "err", err)
		}
	}
	return s.store.Get(ctx, id.Subject)
}

// UploadPicture stores an image as the avatar of uid and returns its URL.
func (s *Profiles) UploadPicture(ctx context.Context, uid, contentType string, body io.Reader, size int64) (string, error) {
	if s.avatars == nil {
		return "", ErrAvatarsDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", invalid("file must be an image")
	}
	if size <= 0 || size > MaxAvatarBytes {
		return "", invalid("file must be between 1 byte and %d bytes", MaxAvatarBytes)
	}
	if _, err := s.store.Get(ctx, uid); err != nil {
		return "", err
	}
	url, err := s.avatars.Upload(ctx, uid, contentType, body, size)
	if err != nil {
		return "", err
	}
	if err := s.store.SetPicture(ctx, uid, url); err != nil {
		return "", err
	}
	return url, nil
}
