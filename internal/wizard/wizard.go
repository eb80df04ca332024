package wizard

import (
	"strings"
	"sync"
	"time"

	"telegram-watch-planner/internal/models"
	"telegram-watch-planner/internal/timeparse"
)

// PlanStore — запись готового плана.
type PlanStore interface {
	InsertPlan(p *models.Plan) error
}

// Catalog — авторегистрация фильма при первой ссылке на него.
type Catalog interface {
	ResolveOrRegisterItem(chatID int64, title, link string) (int64, error)
}

// TimezoneService — пояс пользователя либо сигнал «нужно спросить».
type TimezoneService interface {
	Ensure(userID int64) (loc *time.Location, known bool, err error)
}

// Session — незавершённый мастер одного пользователя. Живёт в памяти
// до завершения, отмены или запуска нового мастера; TTL нет.
type Session struct {
	UserID    int64
	ChatID    int64
	Step      models.Step
	ItemID    int64
	ItemTitle string
	Category  models.Category

	// pendingWhen — сырой текст даты, отложенный до выбора пояса
	pendingWhen string

	CreatedAt time.Time
}

type OutcomeKind int

const (
	OutcomeIgnored OutcomeKind = iota
	OutcomeAskItem
	OutcomeAskCategory
	OutcomeAskWhen
	OutcomeRetryWhen
	OutcomeAskTimezone
	OutcomeCommitted
	OutcomeCancelled
)

// Outcome — результат одного шага мастера; отрисовка — забота транспорта.
type Outcome struct {
	Kind      OutcomeKind
	Plan      *models.Plan
	ItemTitle string
	// PromptTZ: план записан с поясом по умолчанию, стоит предложить
	// пользователю выбрать пояс на будущее
	PromptTZ bool
}

type Wizard struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	store   PlanStore
	catalog Catalog
	tz      TimezoneService
	now     func() time.Time
}

func New(store PlanStore, catalog Catalog, tz TimezoneService) *Wizard {
	return &Wizard{
		sessions: make(map[int64]*Session),
		store:    store,
		catalog:  catalog,
		tz:       tz,
		now:      time.Now,
	}
}

// Start открывает мастер. Прежняя незавершённая сессия пользователя
// молча вытесняется: одна сессия на пользователя.
func (w *Wizard) Start(userID, chatID int64) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions[userID] = &Session{
		UserID:    userID,
		ChatID:    chatID,
		Step:      models.StepAwaitingItem,
		CreatedAt: w.now(),
	}
	return Outcome{Kind: OutcomeAskItem}
}

// Cancel сбрасывает сессию целиком; частичных планов не остаётся.
func (w *Wizard) Cancel(userID int64) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sessions[userID]; !ok {
		return Outcome{Kind: OutcomeIgnored}
	}
	delete(w.sessions, userID)
	return Outcome{Kind: OutcomeCancelled}
}

func (w *Wizard) Active(userID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.sessions[userID]
	return ok
}

// HandleText продвигает мастер входящим сообщением. Сообщение, не
// подходящее текущему шагу, игнорируется — это не ошибка. При ошибке
// хранилища состояние сессии не меняется, тот же ввод можно повторить.
func (w *Wizard) HandleText(userID int64, text string) (Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.sessions[userID]
	if !ok {
		return Outcome{Kind: OutcomeIgnored}, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Kind: OutcomeIgnored}, nil
	}

	switch s.Step {
	case models.StepAwaitingItem:
		title, link := splitItemRef(text)
		id, err := w.catalog.ResolveOrRegisterItem(s.ChatID, title, link)
		if err != nil {
			return Outcome{}, err
		}
		s.ItemID = id
		s.ItemTitle = title
		s.Step = models.StepAwaitingCategory
		return Outcome{Kind: OutcomeAskCategory}, nil

	case models.StepAwaitingCategory:
		cat, ok := categoryFromText(text)
		if !ok {
			return Outcome{Kind: OutcomeIgnored}, nil
		}
		return w.setCategory(s, cat), nil

	case models.StepAwaitingWhen:
		return w.handleWhen(s, text)
	}
	return Outcome{Kind: OutcomeIgnored}, nil
}

// SetCategory — выбор категории кнопкой.
func (w *Wizard) SetCategory(userID int64, cat models.Category) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sessions[userID]
	if !ok || s.Step != models.StepAwaitingCategory {
		return Outcome{Kind: OutcomeIgnored}
	}
	return w.setCategory(s, cat)
}

func (w *Wizard) setCategory(s *Session, cat models.Category) Outcome {
	s.Category = cat
	s.Step = models.StepAwaitingWhen
	return Outcome{Kind: OutcomeAskWhen}
}

// handleWhen — шаг даты. Две ветки при неизвестном поясе:
//   - текст разобрался в поясе по умолчанию → пишем план сразу и лишь
//     предлагаем выбрать пояс на будущее;
//   - не разобрался → приостанавливаем шаг, сохраняем сырой текст и
//     ждём выбора пояса, после чего разбираем его заново.
func (w *Wizard) handleWhen(s *Session, text string) (Outcome, error) {
	loc, known, err := w.tz.Ensure(s.UserID)
	if err != nil {
		return Outcome{}, err
	}

	t, perr := timeparse.Resolve(text, w.now().In(loc), s.Category)

	if known {
		if perr != nil {
			return Outcome{Kind: OutcomeRetryWhen}, nil
		}
		return w.commit(s, t, false)
	}

	if perr == nil {
		return w.commit(s, t, true)
	}
	s.pendingWhen = text
	return Outcome{Kind: OutcomeAskTimezone}, nil
}

// ResumeAfterTimezone повторяет разбор отложенного текста после того,
// как пользователь выбрал пояс.
func (w *Wizard) ResumeAfterTimezone(userID int64) (Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.sessions[userID]
	if !ok || s.Step != models.StepAwaitingWhen || s.pendingWhen == "" {
		return Outcome{Kind: OutcomeIgnored}, nil
	}
	loc, _, err := w.tz.Ensure(s.UserID)
	if err != nil {
		return Outcome{}, err
	}
	text := s.pendingWhen
	s.pendingWhen = ""

	t, perr := timeparse.Resolve(text, w.now().In(loc), s.Category)
	if perr != nil {
		return Outcome{Kind: OutcomeRetryWhen}, nil
	}
	return w.commit(s, t, false)
}

func (w *Wizard) commit(s *Session, t time.Time, promptTZ bool) (Outcome, error) {
	p := &models.Plan{
		ChatID:      s.ChatID,
		ItemID:      s.ItemID,
		Category:    s.Category,
		ScheduledAt: t.UTC(),
		CreatedBy:   s.UserID,
	}
	if err := w.store.InsertPlan(p); err != nil {
		// сессия не тронута: пользователь повторит тот же ввод
		return Outcome{}, err
	}
	title := s.ItemTitle
	delete(w.sessions, s.UserID)
	return Outcome{Kind: OutcomeCommitted, Plan: p, ItemTitle: title, PromptTZ: promptTZ}, nil
}

// splitItemRef: ссылка остаётся ссылкой, названием служит сам текст.
func splitItemRef(text string) (title, link string) {
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		return text, text
	}
	return text, ""
}

func categoryFromText(text string) (models.Category, bool) {
	switch strings.ToLower(text) {
	case "дома", "дом":
		return models.CategoryHome, true
	case "в кино", "кино":
		return models.CategoryCinema, true
	}
	return "", false
}
