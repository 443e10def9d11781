// Package session owns the signed-in user's session record and the profile
// preferences saved after sign-up.
package session

import (
	"encoding/json"
	"sync"

	"github.com/knpstore/sport-store/internal/apiclient"
)

// Storage keys.
const (
	KeyAccessToken     = "access_token"
	KeyUserInfo        = "user_info"
	KeyUserGender      = "user_gender"
	KeyUserDateOfBirth = "user_date_of_birth"
)

type Session struct {
	AccessToken string
	TokenType   string
	User        apiclient.User
}

type Preferences struct {
	Gender      string
	DateOfBirth string
}

// Manager is the single owner of the session record. A new login overwrites the
// previous session.
type Manager struct {
	mu    sync.RWMutex
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) Set(resp apiclient.TokenResponse) error {
	user, err := json.Marshal(resp.User)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Set(map[string]string{
		KeyAccessToken: resp.AccessToken,
		KeyUserInfo:    string(user),
	})
}

// Current returns the stored session, if any. A token without a readable
// user record is not a session.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok, err := m.store.Get(KeyAccessToken)
	if err != nil || !ok || token == "" {
		return Session{}, false
	}
	raw, ok, err := m.store.Get(KeyUserInfo)
	if err != nil || !ok {
		return Session{}, false
	}
	s := Session{AccessToken: token, TokenType: "bearer"}
	if err := json.Unmarshal([]byte(raw), &s.User); err != nil {
		return Session{}, false
	}
	return s, true
}

func (m *Manager) Active() bool {
	_, ok := m.Current()
	return ok
}

// Token returns the access token or "" when signed out.
func (m *Manager) Token() string {
	s, _ := m.Current()
	return s.AccessToken
}

func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(KeyAccessToken, KeyUserInfo)
}

func (m *Manager) SavePreferences(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Set(map[string]string{
		KeyUserGender:      p.Gender,
		KeyUserDateOfBirth: p.DateOfBirth,
	})
}

func (m *Manager) Preferences() (Preferences, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gender, ok, err := m.store.Get(KeyUserGender)
	if err != nil || !ok {
		return Preferences{}, false
	}
	dob, _, _ := m.store.Get(KeyUserDateOfBirth)
	return Preferences{Gender: gender, DateOfBirth: dob}, true
}
