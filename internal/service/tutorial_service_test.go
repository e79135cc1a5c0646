package service

import (
	"context"
	"errors"
	"testing"

	"mycogenesis/internal/data"
)

// mockSession is an in-memory ProgressStore.
type mockSession struct {
	values       map[string]string
	putCalled    int
	removeCalled int
}

var _ ProgressStore = (*mockSession)(nil)

func newMockSession() *mockSession {
	return &mockSession{values: make(map[string]string)}
}

func (m *mockSession) Put(ctx context.Context, key string, val interface{}) {
	m.putCalled++
	m.values[key] = val.(string)
}

func (m *mockSession) GetString(ctx context.Context, key string) string {
	return m.values[key]
}

func (m *mockSession) Remove(ctx context.Context, key string) {
	m.removeCalled++
	delete(m.values, key)
}

func testGuide() *data.TutorialGuide {
	return &data.TutorialGuide{
		ID:    "oyster-kit",
		Steps: []data.TutorialStep{{Title: "Soak"}, {Title: "Drain"}, {Title: "Inoculate"}, {Title: "Fruit"}},
	}
}

func TestTutorialService_ToggleStepComplete(t *testing.T) {
	sess := newMockSession()
	svc := NewTutorialService(sess)
	ctx := context.Background()
	guide := testGuide()

	p, err := svc.ToggleStepComplete(ctx, guide, 2)
	if err != nil {
		t.Fatalf("ToggleStepComplete failed: %v", err)
	}
	if !p.IsComplete(2) {
		t.Errorf("expected step 2 complete, got %+v", p)
	}
	want := `{"currentStep":0,"completedSteps":[2]}`
	if got := sess.values["tutorial_progress_oyster-kit"]; got != want {
		t.Errorf("expected stored progress %s, got %s", want, got)
	}

	p, _ = svc.ToggleStepComplete(ctx, guide, 2)
	if p.IsComplete(2) || len(p.CompletedSteps) != 0 {
		t.Errorf("expected step 2 toggled off, got %+v", p)
	}

	if _, err := svc.ToggleStepComplete(ctx, guide, 4); !errors.Is(err, ErrStepOutOfRange) {
		t.Errorf("expected ErrStepOutOfRange, got %v", err)
	}
}

func TestTutorialService_SetCurrentStep(t *testing.T) {
	svc := NewTutorialService(newMockSession())
	ctx := context.Background()
	guide := testGuide()

	p, err := svc.SetCurrentStep(ctx, guide, 10)
	if err != nil {
		t.Fatalf("SetCurrentStep failed: %v", err)
	}
	if p.CurrentStep != 3 {
		t.Errorf("expected step clamped to 3, got %d", p.CurrentStep)
	}
	if got := svc.Progress(ctx, guide).CurrentStep; got != 3 {
		t.Errorf("expected saved step 3, got %d", got)
	}
	p, _ = svc.SetCurrentStep(ctx, guide, -1)
	if p.CurrentStep != 0 {
		t.Errorf("expected step clamped to 0, got %d", p.CurrentStep)
	}
}

func TestTutorialService_ResetProgress(t *testing.T) {
	sess := newMockSession()
	svc := NewTutorialService(sess)
	ctx := context.Background()
	guide := testGuide()

	svc.ToggleStepComplete(ctx, guide, 1)
	svc.ResetProgress(ctx, guide)

	if _, ok := sess.values[ProgressKey(guide.ID)]; ok {
		t.Error("expected progress key to be removed")
	}
	if sess.removeCalled != 1 {
		t.Errorf("expected Remove to be called once, got %d", sess.removeCalled)
	}
	p := svc.Progress(ctx, guide)
	if p.CurrentStep != 0 || len(p.CompletedSteps) != 0 {
		t.Errorf("expected fresh progress, got %+v", p)
	}
}

func TestTutorialService_ProgressDropsStaleSteps(t *testing.T) {
	sess := newMockSession()
	sess.values[ProgressKey("oyster-kit")] = `{"currentStep":9,"completedSteps":[0,7]}`
	p := NewTutorialService(sess).Progress(context.Background(), testGuide())

	if p.CurrentStep != 3 {
		t.Errorf("expected current step 3, got %d", p.CurrentStep)
	}
	if len(p.CompletedSteps) != 1 || p.CompletedSteps[0] != 0 {
		t.Errorf("expected [0], got %v", p.CompletedSteps)
	}
	if p.Percent(4) != 25 {
		t.Errorf("expected 25%%, got %d", p.Percent(4))
	}

	sess.values[ProgressKey("oyster-kit")] = "not json"
	if p := NewTutorialService(sess).Progress(context.Background(), testGuide()); p.CurrentStep != 0 {
		t.Errorf("expected corrupt progress to reset, got %+v", p)
	}
}
