package handlers

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"telegram-watch-planner/internal/enrich"
	"telegram-watch-planner/internal/lookup"
	"telegram-watch-planner/internal/models"
	"telegram-watch-planner/internal/timezone"
	"telegram-watch-planner/internal/wizard"
)

// enrichDeadline — сколько ждём карточку фильма, прежде чем отправить
// подтверждение без неё.
const enrichDeadline = 800 * time.Millisecond

// Notify реализует scheduler.Notifier поверх телеграма.
func (h *Handler) Notify(p models.PlanWithItem) error {
	var txt string
	switch p.Category {
	case models.CategoryCinema:
		txt = fmt.Sprintf("Сегодня поход в кино: «%s»!", p.Title)
	default:
		txt = fmt.Sprintf("Пора смотреть: «%s»!", p.Title)
	}
	_, err := h.Bot.Send(tgbotapi.NewMessage(p.ChatID, txt))
	return err
}

// sendCommitted шлёт подтверждение плана. Карточка фильма — медленная
// необязательная часть: ждём её не дольше enrichDeadline, опоздавший
// результат доезжает правкой уже отправленного сообщения.
func (h *Handler) sendCommitted(chatID, userID int64, out wizard.Outcome) {
	loc, _, err := h.TZ.Ensure(userID)
	if err != nil {
		loc = timezone.Default()
	}
	base := fmt.Sprintf("Запланировано: «%s» — %s",
		out.ItemTitle, out.Plan.ScheduledAt.In(loc).Format("02.01.2006 15:04"))

	if !h.Lookup.Enabled() {
		h.send(chatID, base)
		return
	}

	sentID := make(chan int, 1)
	film, ok := enrich.Load(func() (*lookup.Film, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		return h.Lookup.SearchFilm(ctx, out.ItemTitle)
	}, enrichDeadline, func(f *lookup.Film) {
		id, okID := <-sentID
		if !okID {
			return
		}
		edit := tgbotapi.NewEditMessageText(chatID, id, base+"\n"+filmLine(f))
		if _, err := h.Bot.Send(edit); err != nil {
			logrus.WithError(err).WithField("chat_id", chatID).Warn("поздний патч карточки не прошёл")
		}
	})

	text := base
	if ok {
		text += "\n" + filmLine(film)
	}
	m, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		close(sentID)
		logrus.WithError(err).WithField("chat_id", chatID).Error("не удалось отправить подтверждение")
		return
	}
	if !ok {
		sentID <- m.MessageID
	}
}

func filmLine(f *lookup.Film) string {
	if f.Year != "" {
		return fmt.Sprintf("Кинопоиск: %s (%s) %s", f.Title, f.Year, f.URL)
	}
	return fmt.Sprintf("Кинопоиск: %s %s", f.Title, f.URL)
}
