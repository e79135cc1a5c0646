package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLStore is the secondary database backed by MySQL or SQLite.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

const postColumns = `id, title, slug, excerpt, content, author, status, featured, published_at`

// PublishedPosts returns published posts, newest first.
func (s *SQLStore) PublishedPosts(ctx context.Context, limit int) ([]*BlogPost, error) {
	var posts []*BlogPost
	query := s.db.Rebind(`SELECT ` + postColumns + ` FROM posts
		WHERE status = ? AND published_at IS NOT NULL
		ORDER BY published_at DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &posts, query, StatusPublished, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to get published posts: %w", err)
	}
	return posts, nil
}

// AvailableProducts returns products that are in stock or on pre-order.
func (s *SQLStore) AvailableProducts(ctx context.Context, limit int) ([]*Product, error) {
	var products []*Product
	query := s.db.Rebind(`SELECT id, name, slug, description, image_url, category, availability, price, featured, updated_at
		FROM products WHERE availability IN (?, ?) ORDER BY name LIMIT ?`)
	if err := s.db.SelectContext(ctx, &products, query, InStock, PreOrder, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to get available products: %w", err)
	}
	return products, nil
}

// SearchPosts filters published posts in memory, matching what the Firestore
// backend can do.
func (s *SQLStore) SearchPosts(ctx context.Context, term string, limit int) ([]*BlogPost, error) {
	posts, err := s.PublishedPosts(ctx, searchScanLimit)
	if err != nil {
		return nil, err
	}
	return truncate(FilterPosts(posts, term), limit), nil
}

// SearchProducts filters available products in memory.
func (s *SQLStore) SearchProducts(ctx context.Context, term string, limit int) ([]*Product, error) {
	products, err := s.AvailableProducts(ctx, searchScanLimit)
	if err != nil {
		return nil, err
	}
	return truncate(FilterProducts(products, term), limit), nil
}

// CreateFAQRating stores a rating. The ID and timestamp are filled in when empty.
func (s *SQLStore) CreateFAQRating(ctx context.Context, rating *FAQRating) error {
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO faq_ratings (id, faq_id, helpful, created_at) VALUES (:id, :faq_id, :helpful, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, rating); err != nil {
		return fmt.Errorf("failed to create faq rating: %w", err)
	}
	return nil
}

// RecordPageView increments the view counter of page, creating the row on
// first view. Both steps run in one transaction.
func (s *SQLStore) RecordPageView(ctx context.Context, page string) (*PageAnalytics, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var current PageAnalytics
	err = tx.GetContext(ctx, &current, tx.Rebind(`SELECT page, views, last_viewed FROM page_analytics WHERE page = ?`), page)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = PageAnalytics{Page: page, Views: 1, LastViewed: now}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO page_analytics (page, views, last_viewed) VALUES (:page, :views, :last_viewed)`, &current); err != nil {
			return nil, fmt.Errorf("failed to create page analytics: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read page analytics: %w", err)
	default:
		current.Views++
		current.LastViewed = now
		if _, err := tx.NamedExecContext(ctx, `UPDATE page_analytics SET views = :views, last_viewed = :last_viewed WHERE page = :page`, &current); err != nil {
			return nil, fmt.Errorf("failed to update page analytics: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit page analytics: %w", err)
	}
	return &current, nil
}

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// searchScanLimit bounds how many rows a client-side search looks at.
const searchScanLimit = 200

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
