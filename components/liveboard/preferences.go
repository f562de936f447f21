package liveboard

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"
)

// DefaultProfile is the preference profile used when no user is known.
const DefaultProfile = "default"

// DefaultPreferenceFields are collected when a prompt names no fields.
var DefaultPreferenceFields = []string{"theme", "notifications", "language"}

// Preferences are the values a user submitted through a preference prompt.
type Preferences struct {
	Values    map[string]any `json:"values"`
	Context   string         `json:"context,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// PreferenceStore persists submitted preferences per profile.
type PreferenceStore interface {
	Preferences(ctx context.Context, profile string) (Preferences, error)
	SavePreferences(ctx context.Context, profile string, prefs Preferences) error
}

// InMemoryPreferenceStore is the default concurrency-safe preference store.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]Preferences
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]Preferences),
	}
}

// Preferences returns the stored values or an empty set.
func (s *InMemoryPreferenceStore) Preferences(_ context.Context, profile string) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.data[s.key(profile)]
	if !ok {
		return Preferences{Values: map[string]any{}}, nil
	}
	prefs.Values = maps.Clone(prefs.Values)
	return prefs, nil
}

// SavePreferences merges prefs into the stored values for profile.
func (s *InMemoryPreferenceStore) SavePreferences(_ context.Context, profile string, prefs Preferences) error {
	if prefs.Values == nil {
		return errors.New("liveboard: preferences require values")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(profile)
	current, ok := s.data[key]
	if !ok || current.Values == nil {
		current.Values = map[string]any{}
	}
	maps.Copy(current.Values, prefs.Values)
	if prefs.Context != "" {
		current.Context = prefs.Context
	}
	current.UpdatedAt = prefs.UpdatedAt
	s.data[key] = current
	return nil
}

func (s *InMemoryPreferenceStore) key(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}
