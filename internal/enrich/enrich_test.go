package enrich

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFastFetchIncluded(t *testing.T) {
	v, ok := Load(func() (string, error) {
		return "карточка", nil
	}, 200*time.Millisecond, nil)
	assert.True(t, ok)
	assert.Equal(t, "карточка", v)
}

func TestLoadSlowFetchPatchesLate(t *testing.T) {
	late := make(chan string, 1)
	v, ok := Load(func() (string, error) {
		time.Sleep(50 * time.Millisecond)
		return "опоздавшая карточка", nil
	}, 5*time.Millisecond, func(s string) {
		late <- s
	})
	assert.False(t, ok)
	assert.Equal(t, "", v)

	select {
	case got := <-late:
		assert.Equal(t, "опоздавшая карточка", got)
	case <-time.After(time.Second):
		require.Fail(t, "late-коллбек так и не вызван")
	}
}

func TestLoadFetchErrorAbsent(t *testing.T) {
	called := make(chan struct{}, 1)
	_, ok := Load(func() (int, error) {
		return 0, errors.New("внешний сервис упал")
	}, 200*time.Millisecond, func(int) {
		called <- struct{}{}
	})
	assert.False(t, ok)

	select {
	case <-called:
		require.Fail(t, "late-коллбек не должен вызываться при ошибке")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoadLateErrorAbsent(t *testing.T) {
	called := make(chan struct{}, 1)
	_, ok := Load(func() (int, error) {
		time.Sleep(30 * time.Millisecond)
		return 0, errors.New("внешний сервис упал")
	}, 5*time.Millisecond, func(int) {
		called <- struct{}{}
	})
	assert.False(t, ok)

	select {
	case <-called:
		require.Fail(t, "late-коллбек не должен вызываться при ошибке")
	case <-time.After(100 * time.Millisecond):
	}
}
