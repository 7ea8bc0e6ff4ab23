package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/splitbill/internal/i18n"
	"github.com/mmynk/splitbill/internal/session"
	"github.com/mmynk/splitbill/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "splitbill-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	t.Run("Put then Get returns the same session", func(t *testing.T) {
		sess := session.New("sess-1", i18n.English)
		if err := sess.Apply(session.ConfirmCount{}, now); err != nil {
			t.Fatalf("ConfirmCount failed: %v", err)
		}
		if err := store.Put(ctx, sess, time.Hour); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, err := store.Get(ctx, "sess-1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Step != session.StepCollectingOrders {
			t.Errorf("Step = %v, want %v", got.Step, session.StepCollectingOrders)
		}
		if len(got.Participants) != 2 {
			t.Errorf("got %d participants, want 2", len(got.Participants))
		}
		if got.Locale != i18n.English {
			t.Errorf("Locale = %q, want en", got.Locale)
		}
		if !got.UpdatedAt.Equal(now) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
		}
	})

	t.Run("Put replaces existing session", func(t *testing.T) {
		sess := session.New("sess-2", i18n.Indonesian)
		if err := store.Put(ctx, sess, time.Hour); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := sess.Apply(session.SetCount{Value: "7"}, now); err != nil {
			t.Fatalf("SetCount failed: %v", err)
		}
		if err := store.Put(ctx, sess, time.Hour); err != nil {
			t.Fatalf("second Put failed: %v", err)
		}

		got, err := store.Get(ctx, "sess-2")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Count != 7 {
			t.Errorf("Count = %d, want 7", got.Count)
		}
	})

	t.Run("Get unknown session", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("expired sessions are hidden and purged", func(t *testing.T) {
		sess := session.New("sess-3", i18n.Indonesian)
		if err := store.Put(ctx, sess, time.Minute); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		later := now.Add(2 * time.Minute)
		store.now = func() time.Time { return later }
		defer func() { store.now = func() time.Time { return now } }()

		if _, err := store.Get(ctx, "sess-3"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expired Get err = %v, want ErrNotFound", err)
		}

		n, err := store.PurgeExpired(ctx, later)
		if err != nil {
			t.Fatalf("PurgeExpired failed: %v", err)
		}
		if n != 1 {
			t.Errorf("purged %d sessions, want 1", n)
		}
	})

	t.Run("Delete removes session", func(t *testing.T) {
		sess := session.New("sess-4", i18n.Indonesian)
		if err := store.Put(ctx, sess, time.Hour); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := store.Delete(ctx, "sess-4"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Get(ctx, "sess-4"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get after Delete err = %v, want ErrNotFound", err)
		}
		if err := store.Delete(ctx, "sess-4"); err != nil {
			t.Errorf("second Delete failed: %v", err)
		}
	})
}

func TestInMemoryStore(t *testing.T) {
	store, err := New(MemoryPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	sess := session.New("mem", i18n.Indonesian)
	if err := store.Put(ctx, sess, time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Get(ctx, "mem"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
}
