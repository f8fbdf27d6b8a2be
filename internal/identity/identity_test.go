package identity

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/auth"

	"github.com/iliyamo/court-reservation/internal/utils"
)

type stubFirebase struct {
	token   *auth.Token
	err     error
	updated map[string]string
}

func (s *stubFirebase) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return s.token, s.err
}

func (s *stubFirebase) UpdateUser(_ context.Context, uid string, _ *auth.UserToUpdate) (*auth.UserRecord, error) {
	if s.updated == nil {
		s.updated = map[string]string{}
	}
	s.updated[uid] = "updated"
	return &auth.UserRecord{}, s.err
}

func TestLocalVerify(t *testing.T) {
	tok, _ := utils.NewAccessToken("secret", "7", "a@b.co", "ADMIN", 5)
	id, err := NewLocal("secret").Verify(context.Background(), tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	want := Identity{Subject: "7", Email: "a@b.co", Role: "ADMIN", Provider: ProviderLocal}
	if id != want {
		t.Fatalf("got %+v, want %+v", id, want)
	}
}

func TestChain(t *testing.T) {
	local := NewLocal("secret")
	fb := &Firebase{client: &stubFirebase{token: &auth.Token{UID: "fb-uid", Claims: map[string]interface{}{"email": "x@y.z"}}}}
	tok, _ := utils.NewAccessToken("secret", "7", "", "USER", 5)

	tests := []struct {
		name     string
		chain    Chain
		raw      string
		wantSub  string
		wantProv string
		wantErr  bool
	}{
		{"local first", Chain{local, fb}, tok.Token, "7", ProviderLocal, false},
		{"falls through to firebase", Chain{local, fb}, "firebase-id-token", "fb-uid", ProviderFirebase, false},
		{"nothing accepts", Chain{local}, "garbage", "", "", true},
		{"empty token", Chain{local, fb}, "", "", "", true},
		{"empty chain", Chain{}, "x", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.chain.Verify(context.Background(), tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthenticated) {
					t.Fatalf("expected ErrUnauthenticated, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if id.Subject != tt.wantSub || id.Provider != tt.wantProv {
				t.Fatalf("got %+v", id)
			}
		})
	}
}

func TestFirebaseAdminClaim(t *testing.T) {
	fb := &Firebase{client: &stubFirebase{token: &auth.Token{UID: "u", Claims: map[string]interface{}{"role": "ADMIN"}}}}
	id, err := fb.Verify(context.Background(), "t")
	if err != nil || id.Role != "ADMIN" {
		t.Fatalf("got %+v, %v", id, err)
	}
}

type nameStore map[uint64]string

func (n nameStore) UpdateDisplayName(_ context.Context, id uint64, name string) error {
	n[id] = name
	return nil
}

func TestDisplayNames(t *testing.T) {
	store := nameStore{}
	stub := &stubFirebase{}
	d := DisplayNames{Users: store, Firebase: &Firebase{client: stub}}
	ctx := context.Background()

	if err := d.Update(ctx, Identity{Subject: "12", Provider: ProviderLocal}, "Ana Pérez"); err != nil {
		t.Fatal(err)
	}
	if store[12] != "Ana Pérez" {
		t.Fatalf("local name not stored: %v", store)
	}
	if err := d.Update(ctx, Identity{Subject: "fb", Provider: ProviderFirebase}, "Ana Pérez"); err != nil {
		t.Fatal(err)
	}
	if stub.updated["fb"] == "" {
		t.Fatal("firebase user not updated")
	}
	if err := d.Update(ctx, Identity{Subject: "abc", Provider: ProviderLocal}, "x"); err == nil {
		t.Fatal("expected error for non-numeric local subject")
	}
	if err := (DisplayNames{}).Update(ctx, Identity{Subject: "fb", Provider: ProviderFirebase}, "x"); err != nil {
		t.Fatalf("unconfigured firebase should be a no-op, got %v", err)
	}
}
