// Package identity verifies bearer tokens issued either by the service's
// own login endpoints or by Firebase Authentication.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/utils"
)

// Token issuers.
const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

// Identity is the authenticated caller.  Subject is the decimal user id for
// local accounts and the Firebase UID otherwise.
type Identity struct {
	Subject  string
	Email    string
	Role     string
	Provider string
}

// ErrUnauthenticated is returned when no verifier accepts a token.
var ErrUnauthenticated = errors.New("identity: unauthenticated")

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Identity, error)
}

// Local verifies HS256 access tokens minted by the auth handler.
type Local struct {
	secret string
}

func NewLocal(secret string) *Local { return &Local{secret: secret} }

func (l *Local) Verify(_ context.Context, raw string) (Identity, error) {
	claims, err := utils.ParseAccessToken(l.secret, raw)
	if err != nil {
		return Identity{}, err
	}
	role := claims.Role
	if role == "" {
		role = model.RoleUser
	}
	return Identity{Subject: claims.Subject, Email: claims.Email, Role: role, Provider: ProviderLocal}, nil
}

// Chain tries each verifier in order and returns the first identity.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}
	var last error
	for _, v := range c {
		if v == nil {
			continue
		}
		id, err := v.Verify(ctx, raw)
		if err == nil {
			return id, nil
		}
		last = err
	}
	if last == nil {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, last)
}

// LocalNameStore persists display names of local accounts.
type LocalNameStore interface {
	UpdateDisplayName(ctx context.Context, id uint64, displayName string) error
}

// DisplayNames updates the display name at whichever provider issued the
// identity.  A nil Firebase means Firebase identities are left unchanged.
type DisplayNames struct {
	Users    LocalNameStore
	Firebase *Firebase
}

// Update sets the display name of id to name.
func (d DisplayNames) Update(ctx context.Context, id Identity, name string) error {
	switch id.Provider {
	case ProviderLocal:
		if d.Users == nil {
			return nil
		}
		uid, err := strconv.ParseUint(id.Subject, 10, 64)
		if err != nil {
			return fmt.Errorf("identity: bad local subject %q: %w", id.Subject, err)
		}
		return d.Users.UpdateDisplayName(ctx, uid, name)
	case ProviderFirebase:
		if d.Firebase == nil {
			return nil
		}
		return d.Firebase.UpdateDisplayName(ctx, id.Subject, name)
	}
	return fmt.Errorf("identity: unknown provider %q", id.Provider)
}
