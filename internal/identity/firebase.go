package identity

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"

	"github.com/iliyamo/court-reservation/internal/model"
)

// firebaseAuth is the part of *auth.Client used here.
type firebaseAuth interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
}

// Firebase verifies Firebase ID tokens and updates Firebase user records.
type Firebase struct {
	client firebaseAuth
}

// NewFirebase initialises the Firebase Admin SDK for projectID.  When
// credentialsFile is empty, application default credentials are used.
func NewFirebase(ctx context.Context, projectID, credentialsFile string) (*Firebase, error) {
	if projectID == "" {
		return nil, errors.New("firebase: project id required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: init app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: init auth: %w", err)
	}
	return &Firebase{client: client}, nil
}

// Verify checks a Firebase ID token.  A custom "role" claim of ADMIN grants
// the admin role.
func (f *Firebase) Verify(ctx context.Context, raw string) (Identity, error) {
	tok, err := f.client.VerifyIDToken(ctx, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("firebase: verify id token: %w", err)
	}
	id := Identity{Subject: tok.UID, Role: model.RoleUser, Provider: ProviderFirebase}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = email
	}
	if role, ok := tok.Claims["role"].(string); ok && role == model.RoleAdmin {
		id.Role = model.RoleAdmin
	}
	return id, nil
}

// UpdateDisplayName sets the display name of the Firebase user uid.
func (f *Firebase) UpdateDisplayName(ctx context.Context, uid, name string) error {
	if _, err := f.client.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).DisplayName(name)); err != nil {
		return fmt.Errorf("firebase: update user: %w", err)
	}
	return nil
}
