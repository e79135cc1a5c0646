//go:build integration

package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

// setupSQLStoreTest creates a migrated SQLite database in a temp dir.
func setupSQLStoreTest(t *testing.T) (*SQLStore, *sqlx.DB) {
	t.Helper()

	db, err := NewDB("sqlite3", filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := ApplyMigrations(db, "sqlite3"); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
	return NewSQLStore(db), db
}

func TestSQLStore_PublishedPosts(t *testing.T) {
	store, db := setupSQLStoreTest(t)
	now := time.Now().UTC()

	db.MustExec(`INSERT INTO posts (id, title, slug, status, published_at) VALUES (?, ?, ?, ?, ?)`, "1", "Old", "old", "published", now.Add(-time.Hour))
	db.MustExec(`INSERT INTO posts (id, title, slug, status, published_at) VALUES (?, ?, ?, ?, ?)`, "2", "New", "new", "published", now)
	db.MustExec(`INSERT INTO posts (id, title, slug, status) VALUES (?, ?, ?, ?)`, "3", "Draft", "draft", "draft")

	posts, err := store.PublishedPosts(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 published posts, got %d", len(posts))
	}
	if posts[0].Title != "New" {
		t.Errorf("expected newest first, got %q", posts[0].Title)
	}

	found, err := store.SearchPosts(context.Background(), "old", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 || found[0].Slug != "old" {
		t.Errorf("expected to find 'old', got %v", found)
	}
}

func TestSQLStore_AvailableProducts(t *testing.T) {
	store, db := setupSQLStoreTest(t)

	db.MustExec(`INSERT INTO products (id, name, slug, availability, price) VALUES (?, ?, ?, ?, ?)`, "p1", "Grow Kit", "grow-kit", "in-stock", 29.5)
	db.MustExec(`INSERT INTO products (id, name, slug, availability, price) VALUES (?, ?, ?, ?, ?)`, "p2", "Spores", "spores", "out-of-stock", 10)
	db.MustExec(`INSERT INTO products (id, name, slug, availability, price) VALUES (?, ?, ?, ?, ?)`, "p3", "Tincture", "tincture", "pre-order", 40)

	products, err := store.AvailableProducts(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("expected 2 available products, got %d", len(products))
	}
	if products[0].Price != 29.5 {
		t.Errorf("expected price 29.5, got %v", products[0].Price)
	}
}

func TestSQLStore_RecordPageView(t *testing.T) {
	store, _ := setupSQLStoreTest(t)
	ctx := context.Background()

	first, err := store.RecordPageView(ctx, "home")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Views != 1 {
		t.Errorf("expected 1 view, got %d", first.Views)
	}

	second, err := store.RecordPageView(ctx, "home")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Views != 2 {
		t.Errorf("expected 2 views, got %d", second.Views)
	}
}

func TestSQLStore_CreateFAQRating(t *testing.T) {
	store, db := setupSQLStoreTest(t)

	rating := &FAQRating{FAQID: "faq-1", Helpful: true}
	if err := store.CreateFAQRating(context.Background(), rating); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rating.ID == "" {
		t.Error("expected generated id")
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM faq_ratings WHERE faq_id = ?`, "faq-1"); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 rating, got %d", count)
	}
}
