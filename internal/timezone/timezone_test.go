package timezone

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	tz  map[int64]string
	err error
}

func (m *memStore) GetTimezone(userID int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.tz[userID], nil
}

func (m *memStore) PutTimezone(userID int64, tz string) error {
	if m.err != nil {
		return m.err
	}
	if m.tz == nil {
		m.tz = make(map[int64]string)
	}
	m.tz[userID] = tz
	return nil
}

func TestEnsureUnknownSignalsPrompt(t *testing.T) {
	s := NewService(&memStore{})
	loc, known, err := s.Ensure(1)
	require.NoError(t, err)
	assert.False(t, known)
	assert.Equal(t, Default(), loc)
}

func TestChooseThenNeverPromptAgain(t *testing.T) {
	store := &memStore{}
	s := NewService(store)

	loc, err := s.Choose(1, "MSK+2")
	require.NoError(t, err)
	assert.Equal(t, "MSK+2", loc.String())

	// сколько ни спрашивай — запись есть, prompt не нужен
	for i := 0; i < 5; i++ {
		got, known, err := s.Ensure(1)
		require.NoError(t, err)
		assert.True(t, known)
		assert.Equal(t, "MSK+2", got.String())
	}
}

func TestChooseUnknownIDFallsBack(t *testing.T) {
	store := &memStore{}
	s := NewService(store)

	loc, err := s.Choose(1, "нет такого")
	require.NoError(t, err)
	assert.Equal(t, DefaultID, loc.String())
	assert.Equal(t, DefaultID, store.tz[1])
}

func TestEnsureStoreError(t *testing.T) {
	s := NewService(&memStore{err: errors.New("база недоступна")})
	_, _, err := s.Ensure(1)
	assert.Error(t, err)
}

func TestCatalogOffsets(t *testing.T) {
	// Москва — UTC+3; полдень UTC это 15:00 МСК
	loc, ok := Location("MSK")
	require.True(t, ok)
	noonUTC := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 15, noonUTC.In(loc).Hour())

	kam, ok := Location("MSK+9")
	require.True(t, ok)
	assert.Equal(t, 0, noonUTC.In(kam).Hour()%24)

	_, ok = Location("PDT")
	assert.False(t, ok)
}
