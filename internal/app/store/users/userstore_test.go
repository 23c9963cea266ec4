package userstore

import (
	"testing"

	"github.com/dalemusser/tabtrail/internal/app/system/authutil"
	"github.com/dalemusser/tabtrail/internal/domain/models"
	"github.com/dalemusser/tabtrail/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := authutil.HashPassword("Sup3rSecret!")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}

	u, err := s.Create(ctx, "  User@Example.COM ", hash)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if u.Email != "user@example.com" {
		t.Errorf("email = %q, want normalized lowercase", u.Email)
	}
	if u.EmailCI == "" {
		t.Error("email_ci should be populated")
	}
	if !u.Preferences.CaptureEnabled {
		t.Error("new accounts should have capture enabled")
	}
	if u.Preferences.RetentionDays != models.DefaultRetentionDays {
		t.Errorf("retention days = %d, want %d", u.Preferences.RetentionDays, models.DefaultRetentionDays)
	}

	t.Run("duplicate email is rejected", func(t *testing.T) {
		if _, err := s.Create(ctx, "USER@example.com", hash); err != ErrDuplicateEmail {
			t.Errorf("Create() = %v, want ErrDuplicateEmail", err)
		}
	})
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := s.Create(ctx, "lookup@example.com", "hash")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	t.Run("case-insensitive match", func(t *testing.T) {
		u, err := s.GetByEmail(ctx, "LOOKUP@Example.com")
		if err != nil {
			t.Fatalf("GetByEmail() error: %v", err)
		}
		if u.ID != created.ID {
			t.Errorf("found wrong user")
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := s.GetByEmail(ctx, "nobody@example.com"); err != mongo.ErrNoDocuments {
			t.Errorf("GetByEmail() = %v, want ErrNoDocuments", err)
		}
	})
}

func TestStore_UpdatePreferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := s.Create(ctx, "prefs@example.com", "hash")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		disabled := false
		updated, err := s.UpdatePreferences(ctx, u.ID, PreferencesUpdate{CaptureEnabled: &disabled})
		if err != nil {
			t.Fatalf("UpdatePreferences() error: %v", err)
		}
		if updated.Preferences.CaptureEnabled {
			t.Error("capture should be disabled")
		}
		if updated.Preferences.RetentionDays != models.DefaultRetentionDays {
			t.Errorf("retention days changed unexpectedly: %d", updated.Preferences.RetentionDays)
		}
	})

	t.Run("retention update", func(t *testing.T) {
		days := 90
		updated, err := s.UpdatePreferences(ctx, u.ID, PreferencesUpdate{RetentionDays: &days})
		if err != nil {
			t.Fatalf("UpdatePreferences() error: %v", err)
		}
		if updated.Preferences.RetentionDays != 90 {
			t.Errorf("retention days = %d, want 90", updated.Preferences.RetentionDays)
		}
		if updated.Preferences.CaptureEnabled {
			t.Error("earlier capture_enabled update should persist")
		}
	})

	t.Run("missing user", func(t *testing.T) {
		days := 10
		if _, err := s.UpdatePreferences(ctx, primitive.NewObjectID(), PreferencesUpdate{RetentionDays: &days}); err != mongo.ErrNoDocuments {
			t.Errorf("UpdatePreferences() = %v, want ErrNoDocuments", err)
		}
	})
}

func TestStore_ListWithRetention(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := s.Create(ctx, "a@example.com", "hash")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := s.Create(ctx, "b@example.com", "hash"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	days := 7
	if _, err := s.UpdatePreferences(ctx, a.ID, PreferencesUpdate{RetentionDays: &days}); err != nil {
		t.Fatalf("UpdatePreferences() error: %v", err)
	}

	users, err := s.ListWithRetention(ctx)
	if err != nil {
		t.Fatalf("ListWithRetention() error: %v", err)
	}
	// Both users have retention > 0 (default 30 and updated 7).
	if len(users) != 2 {
		t.Fatalf("ListWithRetention() returned %d users, want 2", len(users))
	}
	for _, ru := range users {
		if ru.Preferences.RetentionDays <= 0 {
			t.Errorf("user %s has retention %d, want > 0", ru.ID.Hex(), ru.Preferences.RetentionDays)
		}
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	f := NewFetcher(db, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := s.Create(ctx, "fetch@example.com", "hash")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if got := f.FetchUser(ctx, u.ID); got == nil || got.ID != u.ID {
		t.Error("FetchUser() should return the stored user")
	}
	if got := f.FetchUser(ctx, primitive.NewObjectID()); got != nil {
		t.Error("FetchUser() for an unknown id should return nil")
	}
}
