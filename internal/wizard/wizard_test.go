package wizard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-watch-planner/internal/models"
	"telegram-watch-planner/internal/timezone"
)

var msk = time.FixedZone("MSK", 3*3600)

// вторник, 2 января 2024, 10:00 МСК
var testNow = time.Date(2024, 1, 2, 10, 0, 0, 0, msk)

type fakePlans struct {
	plans    []*models.Plan
	failNext bool
}

func (f *fakePlans) InsertPlan(p *models.Plan) error {
	if f.failNext {
		f.failNext = false
		return errors.New("storage unavailable")
	}
	p.ID = int64(len(f.plans) + 1)
	f.plans = append(f.plans, p)
	return nil
}

type fakeCatalog struct {
	refs     map[string]int64
	failNext bool
}

func (f *fakeCatalog) ResolveOrRegisterItem(chatID int64, title, link string) (int64, error) {
	if f.failNext {
		f.failNext = false
		return 0, errors.New("storage unavailable")
	}
	if f.refs == nil {
		f.refs = make(map[string]int64)
	}
	if id, ok := f.refs[title]; ok {
		return id, nil
	}
	id := int64(len(f.refs) + 1)
	f.refs[title] = id
	return id, nil
}

type fakeTZ struct {
	known bool
	loc   *time.Location
}

func (f *fakeTZ) Ensure(userID int64) (*time.Location, bool, error) {
	if !f.known {
		return timezone.Default(), false, nil
	}
	return f.loc, true, nil
}

func newTestWizard(plans *fakePlans, cat *fakeCatalog, tz *fakeTZ) *Wizard {
	w := New(plans, cat, tz)
	w.now = func() time.Time { return testNow }
	return w
}

func TestWizardRoundTrip(t *testing.T) {
	plans := &fakePlans{}
	w := newTestWizard(plans, &fakeCatalog{}, &fakeTZ{known: true, loc: msk})

	out := w.Start(1, 100)
	assert.Equal(t, OutcomeAskItem, out.Kind)

	out, err := w.HandleText(1, "Дюна")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAskCategory, out.Kind)

	out = w.SetCategory(1, models.CategoryHome)
	assert.Equal(t, OutcomeAskWhen, out.Kind)

	// нераспознанная дата: шаг не двигается, планов нет
	out, err = w.HandleText(1, "когда-нибудь")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetryWhen, out.Kind)
	assert.Empty(t, plans.plans)
	assert.True(t, w.Active(1))

	out, err = w.HandleText(1, "завтра")
	require.NoError(t, err)
	require.Equal(t, OutcomeCommitted, out.Kind)
	assert.False(t, out.PromptTZ)
	assert.False(t, w.Active(1))

	require.Len(t, plans.plans, 1)
	p := plans.plans[0]
	assert.Equal(t, int64(100), p.ChatID)
	assert.Equal(t, int64(1), p.CreatedBy)
	assert.Equal(t, models.CategoryHome, p.Category)
	// среда 20:00 МСК → 17:00 UTC
	assert.Equal(t, time.Date(2024, 1, 3, 17, 0, 0, 0, time.UTC), p.ScheduledAt)
}

func TestWizardCategoryByText(t *testing.T) {
	w := newTestWizard(&fakePlans{}, &fakeCatalog{}, &fakeTZ{known: true, loc: msk})
	w.Start(1, 100)
	_, err := w.HandleText(1, "Дюна")
	require.NoError(t, err)

	// произвольный текст на шаге категории игнорируется
	out, err := w.HandleText(1, "не знаю")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out.Kind)

	out, err = w.HandleText(1, "В кино")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAskWhen, out.Kind)
}

func TestWizardCancelLeavesNothing(t *testing.T) {
	plans := &fakePlans{}
	w := newTestWizard(plans, &fakeCatalog{}, &fakeTZ{known: true, loc: msk})

	w.Start(1, 100)
	_, err := w.HandleText(1, "Дюна")
	require.NoError(t, err)

	out := w.Cancel(1)
	assert.Equal(t, OutcomeCancelled, out.Kind)
	assert.False(t, w.Active(1))
	assert.Empty(t, plans.plans)

	// повторная отмена — игнор
	assert.Equal(t, OutcomeIgnored, w.Cancel(1).Kind)
}

func TestWizardIgnoresWithoutSession(t *testing.T) {
	w := newTestWizard(&fakePlans{}, &fakeCatalog{}, &fakeTZ{known: true, loc: msk})
	out, err := w.HandleText(42, "просто сообщение")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out.Kind)
}

func TestWizardRestartDiscardsOldSession(t *testing.T) {
	w := newTestWizard(&fakePlans{}, &fakeCatalog{}, &fakeTZ{known: true, loc: msk})
	w.Start(1, 100)
	_, err := w.HandleText(1, "Дюна")
	require.NoError(t, err)

	out := w.Start(1, 100)
	assert.Equal(t, OutcomeAskItem, out.Kind)
	// сессия заново на первом шаге: текст снова трактуется как название
	out, err = w.HandleText(1, "Солярис")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAskCategory, out.Kind)
}

func TestWizardCommitsWithDefaultTimezone(t *testing.T) {
	// пояс неизвестен, но дата разобралась: пишем сразу, пояс предлагаем на будущее
	plans := &fakePlans{}
	w := newTestWizard(plans, &fakeCatalog{}, &fakeTZ{known: false})

	w.Start(1, 100)
	_, err := w.HandleText(1, "Дюна")
	require.NoError(t, err)
	w.SetCategory(1, models.CategoryCinema)

	out, err := w.HandleText(1, "завтра")
	require.NoError(t, err)
	require.Equal(t, OutcomeCommitted, out.Kind)
	assert.True(t, out.PromptTZ)
	require.Len(t, plans.plans, 1)
	// 10:00 по умолчанию для кино, МСК по умолчанию → 07:00 UTC
	assert.Equal(t, time.Date(2024, 1, 3, 7, 0, 0, 0, time.UTC), plans.plans[0].ScheduledAt)
}

func TestWizardSuspendsUntilTimezone(t *testing.T) {
	plans := &fakePlans{}
	tz := &fakeTZ{known: false}
	w := newTestWizard(plans, &fakeCatalog{}, tz)

	w.Start(1, 100)
	_, err := w.HandleText(1, "Дюна")
	require.NoError(t, err)
	w.SetCategory(1, models.CategoryHome)

	// не разобралось и пояса нет: шаг приостановлен до выбора пояса
	out, err := w.HandleText(1, "когда-нибудь")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAskTimezone, out.Kind)
	assert.Empty(t, plans.plans)
	assert.True(t, w.Active(1))

	// пояс выбран, отложенный текст так и не разобрался — retry-in-place
	tz.known = true
	tz.loc = msk
	out, err = w.ResumeAfterTimezone(1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetryWhen, out.Kind)
	assert.True(t, w.Active(1))

	out, err = w.HandleText(1, "в субботу 20:00")
	require.NoError(t, err)
	require.Equal(t, OutcomeCommitted, out.Kind)
	require.Len(t, plans.plans, 1)
}

func TestWizardResumeWithoutSuspension(t *testing.T) {
	w := newTestWizard(&fakePlans{}, &fakeCatalog{}, &fakeTZ{known: true, loc: msk})
	out, err := w.ResumeAfterTimezone(1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out.Kind)
}

func TestWizardStoreFailureKeepsSession(t *testing.T) {
	plans := &fakePlans{failNext: true}
	w := newTestWizard(plans, &fakeCatalog{}, &fakeTZ{known: true, loc: msk})

	w.Start(1, 100)
	_, err := w.HandleText(1, "Дюна")
	require.NoError(t, err)
	w.SetCategory(1, models.CategoryHome)

	_, err = w.HandleText(1, "завтра")
	require.Error(t, err)
	assert.True(t, w.Active(1))
	assert.Empty(t, plans.plans)

	// тот же ввод после восстановления хранилища проходит
	out, err := w.HandleText(1, "завтра")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, out.Kind)
	require.Len(t, plans.plans, 1)
}

func TestWizardCatalogFailureKeepsStep(t *testing.T) {
	cat := &fakeCatalog{failNext: true}
	w := newTestWizard(&fakePlans{}, cat, &fakeTZ{known: true, loc: msk})

	w.Start(1, 100)
	_, err := w.HandleText(1, "Дюна")
	require.Error(t, err)

	out, err := w.HandleText(1, "Дюна")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAskCategory, out.Kind)
}

func TestWizardLinkBecomesItemRef(t *testing.T) {
	cat := &fakeCatalog{}
	w := newTestWizard(&fakePlans{}, cat, &fakeTZ{known: true, loc: msk})
	w.Start(1, 100)
	_, err := w.HandleText(1, "https://www.kinopoisk.ru/film/258687/")
	require.NoError(t, err)
	assert.Contains(t, cat.refs, "https://www.kinopoisk.ru/film/258687/")
}
