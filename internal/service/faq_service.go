package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"mycogenesis/internal/data"
)

// ErrInvalidFAQ is returned when a rating names no FAQ.
var ErrInvalidFAQ = errors.New("invalid faq id")

// CategoryAll selects every FAQ category.
const CategoryAll = "all"

// RatingRepository stores FAQ ratings.
type RatingRepository interface {
	CreateFAQRating(ctx context.Context, rating *data.FAQRating) error
}

// FAQService records visitor ratings of FAQ answers.
type FAQService struct {
	ratings RatingRepository
	now     func() time.Time
}

// NewFAQService creates a new FAQService with the given repository.
func NewFAQService(ratings RatingRepository) *FAQService {
	return &FAQService{ratings: ratings, now: time.Now}
}

// Rate records whether the answer to faqID was helpful.
func (s *FAQService) Rate(ctx context.Context, faqID string, helpful bool) error {
	faqID = strings.TrimSpace(faqID)
	if faqID == "" {
		return ErrInvalidFAQ
	}
	rating := &data.FAQRating{FAQID: faqID, Helpful: helpful, CreatedAt: s.now().UTC()}
	if err := s.ratings.CreateFAQRating(ctx, rating); err != nil {
		return fmt.Errorf("rate faq %s: %w", faqID, err)
	}
	return nil
}

// FilterByCategory returns the FAQs in category. An empty category or
// CategoryAll returns every FAQ.
func FilterByCategory(faqs []*data.FAQ, category string) []*data.FAQ {
	if category == "" || category == CategoryAll {
		return faqs
	}
	out := make([]*data.FAQ, 0, len(faqs))
	for _, f := range faqs {
		if strings.EqualFold(f.Category, category) {
			out = append(out, f)
		}
	}
	return out
}

// SearchFAQs returns the FAQs whose question or answer contains term,
// ignoring case. A blank term returns every FAQ.
func SearchFAQs(faqs []*data.FAQ, term string) []*data.FAQ {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return faqs
	}
	out := make([]*data.FAQ, 0, len(faqs))
	for _, f := range faqs {
		if strings.Contains(strings.ToLower(f.Question), term) ||
			strings.Contains(strings.ToLower(f.Answer), term) ||
			strings.Contains(strings.ToLower(f.AnswerBlocks.PlainText()), term) {
			out = append(out, f)
		}
	}
	return out
}

// Categories returns the distinct categories of faqs, sorted.
func Categories(faqs []*data.FAQ) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range faqs {
		if f.Category == "" || seen[f.Category] {
			continue
		}
		seen[f.Category] = true
		out = append(out, f.Category)
	}
	sort.Strings(out)
	return out
}

// SortFAQs orders faqs by their display order, then question.
func SortFAQs(faqs []*data.FAQ) {
	sort.SliceStable(faqs, func(i, j int) bool {
		if faqs[i].Order != faqs[j].Order {
			return faqs[i].Order < faqs[j].Order
		}
		return faqs[i].Question < faqs[j].Question
	})
}
