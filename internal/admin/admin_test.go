package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycogenesis/internal/logger"
)

type fakeUsers struct {
	users   map[string]User
	claims  map[string]map[string]interface{}
	deleted []string
}

func newFakeUsers(users ...User) *fakeUsers {
	f := &fakeUsers{users: map[string]User{}, claims: map[string]map[string]interface{}{}}
	for _, u := range users {
		f.users[u.Email] = u
	}
	return f
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (User, error) {
	u, ok := f.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) SetClaims(_ context.Context, uid string, claims map[string]interface{}) error {
	f.claims[uid] = claims
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

type fakeProfiles struct {
	docs    map[string]map[string]interface{}
	merges  int
	deleted []string
}

func (f *fakeProfiles) All(context.Context) ([]Profile, error) {
	var out []Profile
	for uid, fields := range f.docs {
		out = append(out, Profile{UID: uid, Fields: fields})
	}
	return out, nil
}

func (f *fakeProfiles) Merge(_ context.Context, uid string, fields map[string]interface{}) error {
	f.merges++
	doc := f.docs[uid]
	if doc == nil {
		doc = map[string]interface{}{}
		f.docs[uid] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (f *fakeProfiles) Delete(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	delete(f.docs, uid)
	return nil
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(users *fakeUsers, profiles *fakeProfiles) *Service {
	s := NewService(users, profiles, logger.Nop())
	s.now = func() time.Time { return testNow }
	return s
}

func TestSetRole(t *testing.T) {
	users := newFakeUsers(User{UID: "u1", Email: "ana@example.com"})
	profiles := &fakeProfiles{docs: map[string]map[string]interface{}{}}
	s := newTestService(users, profiles)

	u, err := s.SetRole(context.Background(), " ana@example.com ", "admin")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UID)
	assert.Equal(t, map[string]interface{}{"role": "admin", "admin": true}, users.claims["u1"])
	assert.Equal(t, "admin", profiles.docs["u1"]["role"])
	assert.Equal(t, testNow, profiles.docs["u1"]["updatedAt"])
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	users := newFakeUsers(User{UID: "u1", Email: "ana@example.com"})
	s := newTestService(users, &fakeProfiles{docs: map[string]map[string]interface{}{}})

	_, err := s.SetRole(context.Background(), "ana@example.com", "root")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Empty(t, users.claims)
}

func TestSetRoleUnknownUser(t *testing.T) {
	s := newTestService(newFakeUsers(), &fakeProfiles{docs: map[string]map[string]interface{}{}})
	_, err := s.SetRole(context.Background(), "nobody@example.com", "user")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMissingFields(t *testing.T) {
	complete := Profile{UID: "a", Fields: map[string]interface{}{
		"displayName": "Ana",
		"role":        "editor",
		"createdAt":   testNow,
		"preferences": DefaultPreferences(),
	}}
	assert.Empty(t, MissingFields(complete, testNow))

	bare := Profile{UID: "b", Fields: map[string]interface{}{"email": "bo@example.com", "displayName": "  "}}
	got := MissingFields(bare, testNow)
	assert.Equal(t, "bo", got["displayName"])
	assert.Equal(t, "user", got["role"])
	assert.Equal(t, testNow, got["createdAt"])
	assert.Equal(t, testNow, got["updatedAt"])
	assert.Equal(t, DefaultPreferences(), got["preferences"])

	partial := Profile{UID: "c", Fields: map[string]interface{}{
		"displayName": "Cy",
		"role":        "user",
		"createdAt":   testNow,
		"preferences": map[string]interface{}{"theme": "dark"},
	}}
	got = MissingFields(partial, testNow)
	prefs := got["preferences"].(map[string]interface{})
	assert.Equal(t, "dark", prefs["theme"], "existing preferences are kept")
	assert.Equal(t, true, prefs["notifications"])
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "jo.smith", DisplayName("jo.smith@example.com"))
	assert.Equal(t, "User", DisplayName(""))
	assert.Equal(t, "User", DisplayName("@example.com"))
}

func TestMigrateProfiles(t *testing.T) {
	docs := map[string]map[string]interface{}{
		"done": {"displayName": "D", "role": "user", "createdAt": testNow, "preferences": DefaultPreferences()},
		"todo": {"email": "t@example.com"},
	}

	t.Run("dry run writes nothing", func(t *testing.T) {
		profiles := &fakeProfiles{docs: docs}
		report, err := newTestService(newFakeUsers(), profiles).MigrateProfiles(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Scanned)
		assert.Equal(t, []string{"createdAt", "displayName", "preferences", "role", "updatedAt"}, report.Updated["todo"])
		assert.NotContains(t, report.Updated, "done")
		assert.Zero(t, profiles.merges)
	})

	t.Run("updates incomplete profiles", func(t *testing.T) {
		profiles := &fakeProfiles{docs: docs}
		report, err := newTestService(newFakeUsers(), profiles).MigrateProfiles(context.Background(), false)
		require.NoError(t, err)
		assert.Len(t, report.Updated, 1)
		assert.Equal(t, 1, profiles.merges)
		assert.Equal(t, "t", profiles.docs["todo"]["displayName"])
	})
}

func TestDeleteAccount(t *testing.T) {
	users := newFakeUsers(User{UID: "u1", Email: "ana@example.com"})
	profiles := &fakeProfiles{docs: map[string]map[string]interface{}{"u1": {"role": "user"}}}
	s := newTestService(users, profiles)

	_, err := s.DeleteAccount(context.Background(), "ana@example.com", false)
	assert.True(t, errors.Is(err, ErrNotConfirmed))
	assert.Empty(t, users.deleted)

	_, err = s.DeleteAccount(context.Background(), "ana@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, profiles.deleted)
	assert.Equal(t, []string{"u1"}, users.deleted)
	assert.NotContains(t, profiles.docs, "u1")
}
