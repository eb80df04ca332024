package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"telegram-watch-planner/internal/lookup"
	"telegram-watch-planner/internal/storage"
	"telegram-watch-planner/internal/timezone"
	"telegram-watch-planner/internal/wizard"
)

type Handler struct {
	Bot    *tgbotapi.BotAPI
	DB     *storage.DB
	Wizard *wizard.Wizard
	TZ     *timezone.Service
	Lookup *lookup.Client
}

func New(bot *tgbotapi.BotAPI, db *storage.DB, w *wizard.Wizard, tz *timezone.Service, lk *lookup.Client) *Handler {
	return &Handler{Bot: bot, DB: db, Wizard: w, TZ: tz, Lookup: lk}
}

func (h *Handler) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message != nil {
		if upd.Message.IsCommand() {
			h.HandleCommand(upd.Message)
		} else {
			h.HandleText(upd.Message)
		}
	}
	if upd.CallbackQuery != nil {
		h.HandleCallback(upd.CallbackQuery)
	}
}

// HandleText отдаёт свободный текст мастеру. Без активной сессии,
// как и на неожиданном шаге, сообщение молча игнорируется.
func (h *Handler) HandleText(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	out, err := h.Wizard.HandleText(userID, msg.Text)
	if err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("шаг мастера не выполнен")
		h.send(chatID, txtStoreErr)
		return
	}
	h.renderOutcome(chatID, userID, out)
}

func (h *Handler) renderOutcome(chatID, userID int64, out wizard.Outcome) {
	switch out.Kind {
	case wizard.OutcomeAskItem:
		h.send(chatID, txtAskItem)
	case wizard.OutcomeAskCategory:
		msg := tgbotapi.NewMessage(chatID, txtAskCategory)
		msg.ReplyMarkup = categoryKB
		h.sendMsg(msg)
	case wizard.OutcomeAskWhen:
		h.send(chatID, txtAskWhen)
	case wizard.OutcomeRetryWhen:
		h.send(chatID, txtRetryWhen)
	case wizard.OutcomeAskTimezone:
		h.sendTimezoneKB(chatID, txtAskTZ)
	case wizard.OutcomeCommitted:
		h.sendCommitted(chatID, userID, out)
		if out.PromptTZ {
			h.sendTimezoneKB(chatID, txtTZLater)
		}
	case wizard.OutcomeCancelled:
		h.send(chatID, txtCancelled)
	}
}

func (h *Handler) send(chatID int64, text string) {
	h.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := h.Bot.Send(msg); err != nil {
		logrus.WithError(err).WithField("chat_id", msg.ChatID).Error("не удалось отправить сообщение")
	}
}

func (h *Handler) sendTimezoneKB(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = timezoneKB()
	h.sendMsg(msg)
}
