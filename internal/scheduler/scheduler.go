package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"telegram-watch-planner/internal/models"
)

// PlanStore — контракт хранилища для прохода напоминаний.
type PlanStore interface {
	FindDueUnsent(now time.Time) ([]models.PlanWithItem, error)
	MarkSent(id int64) error
}

// Notifier доставляет напоминание; доставка внешняя и может падать.
type Notifier interface {
	Notify(p models.PlanWithItem) error
}

// Sweeper — один проход по просроченным неотправленным планам.
// Прохода без состояния достаточно: «пора» пересчитывается от текущего
// времени, поэтому перезапуск процесса ничего не теряет — следующий
// проход увидит тот же набор. Флаг reminder_sent ставится только после
// успешной доставки; неудача оставляет план на повтор в следующем тике.
type Sweeper struct {
	store    PlanStore
	notifier Notifier
	now      func() time.Time
}

func NewSweeper(store PlanStore, n Notifier) *Sweeper {
	return &Sweeper{store: store, notifier: n, now: time.Now}
}

// Sweep возвращает число отправленных напоминаний. Ошибка одного плана
// не прерывает проход и тем более не роняет планировщик.
func (s *Sweeper) Sweep() int {
	due, err := s.store.FindDueUnsent(s.now())
	if err != nil {
		logrus.WithError(err).Error("не удалось прочитать планы к напоминанию")
		return 0
	}

	sent := 0
	for _, p := range due {
		if err := s.notifier.Notify(p); err != nil {
			logrus.WithError(err).WithField("plan_id", p.ID).
				Error("доставка напоминания не удалась, повторим на следующем тике")
			continue
		}
		if err := s.store.MarkSent(p.ID); err != nil {
			// доставили, но не пометили: следующий тик продублирует —
			// at-least-once на границе с хранилищем
			logrus.WithError(err).WithField("plan_id", p.ID).
				Error("не удалось пометить напоминание отправленным")
			continue
		}
		sent++
	}
	return sent
}

// Start регистрирует минутную задачу и запускает планировщик.
func Start(sw *Sweeper) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if n := sw.Sweep(); n > 0 {
				logrus.WithField("sent", n).Info("напоминания отправлены")
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}
