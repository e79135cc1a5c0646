package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"mycogenesis/internal/data"
)

// ErrStepOutOfRange is returned for a step index outside the guide.
var ErrStepOutOfRange = errors.New("tutorial step out of range")

// ProgressStore is the part of the session the progress tracker needs.
type ProgressStore interface {
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	Remove(ctx context.Context, key string)
}

// Progress is a visitor's position in a tutorial. Steps are 0-based.
type Progress struct {
	CurrentStep    int   `json:"currentStep"`
	CompletedSteps []int `json:"completedSteps"`
}

// IsComplete reports whether step has been marked complete.
func (p Progress) IsComplete(step int) bool {
	return slices.Contains(p.CompletedSteps, step)
}

// Percent is the share of completed steps out of total, 0 to 100.
func (p Progress) Percent(total int) int {
	if total <= 0 {
		return 0
	}
	return len(p.CompletedSteps) * 100 / total
}

// ProgressKey is the session key holding progress for a tutorial.
func ProgressKey(tutorialID string) string {
	return "tutorial_progress_" + tutorialID
}

// TutorialService tracks tutorial progress in the visitor session.
type TutorialService struct {
	store ProgressStore
}

// NewTutorialService creates a new TutorialService.
func NewTutorialService(store ProgressStore) *TutorialService {
	return &TutorialService{store: store}
}

// Progress returns the saved progress for guide. Missing or unreadable
// progress starts at step 0.
func (s *TutorialService) Progress(ctx context.Context, guide *data.TutorialGuide) Progress {
	p := Progress{CompletedSteps: []int{}}
	raw := s.store.GetString(ctx, ProgressKey(guide.ID))
	if raw == "" {
		return p
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Progress{CompletedSteps: []int{}}
	}
	// Guides can lose steps after progress was saved.
	p.CurrentStep = ClampStep(p.CurrentStep, len(guide.Steps))
	p.CompletedSteps = slices.DeleteFunc(p.CompletedSteps, func(step int) bool {
		return step < 0 || step >= len(guide.Steps)
	})
	if p.CompletedSteps == nil {
		p.CompletedSteps = []int{}
	}
	return p
}

// ToggleStepComplete flips the completion of step and saves the progress.
func (s *TutorialService) ToggleStepComplete(ctx context.Context, guide *data.TutorialGuide, step int) (Progress, error) {
	if step < 0 || step >= len(guide.Steps) {
		return Progress{}, ErrStepOutOfRange
	}
	p := s.Progress(ctx, guide)
	if i := slices.Index(p.CompletedSteps, step); i >= 0 {
		p.CompletedSteps = slices.Delete(p.CompletedSteps, i, i+1)
	} else {
		p.CompletedSteps = append(p.CompletedSteps, step)
		slices.Sort(p.CompletedSteps)
	}
	return p, s.save(ctx, guide.ID, p)
}

// SetCurrentStep moves to step, clamped to the guide, and saves the progress.
func (s *TutorialService) SetCurrentStep(ctx context.Context, guide *data.TutorialGuide, step int) (Progress, error) {
	p := s.Progress(ctx, guide)
	p.CurrentStep = ClampStep(step, len(guide.Steps))
	return p, s.save(ctx, guide.ID, p)
}

// ResetProgress forgets all progress for guide.
func (s *TutorialService) ResetProgress(ctx context.Context, guide *data.TutorialGuide) {
	s.store.Remove(ctx, ProgressKey(guide.ID))
}

func (s *TutorialService) save(ctx context.Context, tutorialID string, p Progress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.store.Put(ctx, ProgressKey(tutorialID), string(raw))
	return nil
}

// ClampStep bounds step to [0, total-1], or 0 for an empty guide.
func ClampStep(step, total int) int {
	if total <= 0 || step < 0 {
		return 0
	}
	if step >= total {
		return total - 1
	}
	return step
}
