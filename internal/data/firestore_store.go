package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collection names.
const (
	postsCollection         = "posts"
	productsCollection      = "products"
	faqRatingsCollection    = "faqRatings"
	pageAnalyticsCollection = "pageAnalytics"
)

// FirestoreStore is the secondary database backed by Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an existing Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// PublishedPosts returns published posts, newest first.
func (s *FirestoreStore) PublishedPosts(ctx context.Context, limit int) ([]*BlogPost, error) {
	q := s.client.Collection(postsCollection).
		Where("status", "==", string(StatusPublished)).
		OrderBy("publishedAt", firestore.Desc).
		Limit(normalizeLimit(limit))

	var posts []*BlogPost
	err := eachDocument(q.Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		var p BlogPost
		if err := doc.DataTo(&p); err != nil {
			return fmt.Errorf("decode post %s: %w", doc.Ref.ID, err)
		}
		p.ID = doc.Ref.ID
		posts = append(posts, &p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("firestore/posts: %w", err)
	}
	return posts, nil
}

// AvailableProducts returns products that are in stock or on pre-order.
func (s *FirestoreStore) AvailableProducts(ctx context.Context, limit int) ([]*Product, error) {
	q := s.client.Collection(productsCollection).
		Where("availability", "in", []string{string(InStock), string(PreOrder)}).
		Limit(normalizeLimit(limit))

	var products []*Product
	err := eachDocument(q.Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		var p Product
		if err := doc.DataTo(&p); err != nil {
			return fmt.Errorf("decode product %s: %w", doc.Ref.ID, err)
		}
		p.ID = doc.Ref.ID
		products = append(products, &p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("firestore/products: %w", err)
	}
	return products, nil
}

// SearchPosts filters published posts client-side; Firestore has no full-text search.
func (s *FirestoreStore) SearchPosts(ctx context.Context, term string, limit int) ([]*BlogPost, error) {
	posts, err := s.PublishedPosts(ctx, searchScanLimit)
	if err != nil {
		return nil, err
	}
	return truncate(FilterPosts(posts, term), limit), nil
}

// SearchProducts filters available products client-side.
func (s *FirestoreStore) SearchProducts(ctx context.Context, term string, limit int) ([]*Product, error) {
	products, err := s.AvailableProducts(ctx, searchScanLimit)
	if err != nil {
		return nil, err
	}
	return truncate(FilterProducts(products, term), limit), nil
}

// CreateFAQRating adds a rating document.
func (s *FirestoreStore) CreateFAQRating(ctx context.Context, rating *FAQRating) error {
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	ref, _, err := s.client.Collection(faqRatingsCollection).Add(ctx, rating)
	if err != nil {
		return fmt.Errorf("firestore/faqRatings: %w", err)
	}
	rating.ID = ref.ID
	return nil
}

// RecordPageView increments the view counter of page inside a transaction,
// creating the document on first view.
func (s *FirestoreStore) RecordPageView(ctx context.Context, page string) (*PageAnalytics, error) {
	ref := s.client.Collection(pageAnalyticsCollection).Doc(page)
	var result PageAnalytics
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now().UTC()
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if snap == nil || !snap.Exists() {
			result = PageAnalytics{Page: page, Views: 1, LastViewed: now}
			return tx.Create(ref, &result)
		}
		if err := snap.DataTo(&result); err != nil {
			return err
		}
		result.Views++
		result.LastViewed = now
		return tx.Set(ref, &result)
	})
	if err != nil {
		return nil, fmt.Errorf("firestore/pageAnalytics: %w", err)
	}
	return &result, nil
}

// Ping reads a single document to verify connectivity.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(postsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore/ping: %w", err)
	}
	return nil
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func eachDocument(iter *firestore.DocumentIterator, fn func(*firestore.DocumentSnapshot) error) error {
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
}
