package handlers

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"telegram-watch-planner/internal/models"
	"telegram-watch-planner/internal/timezone"
	"telegram-watch-planner/internal/wizard"
)

func (h *Handler) HandleCommand(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		if err := h.DB.UpsertUser(chatID); err != nil {
			logrus.WithError(err).WithField("chat_id", chatID).Error("не удалось зарегистрировать чат")
		}
		h.send(chatID, txtWelcome)

	case "plan":
		h.renderOutcome(chatID, userID, h.Wizard.Start(userID, chatID))

	case "cancel":
		out := h.Wizard.Cancel(userID)
		if out.Kind == wizard.OutcomeCancelled {
			h.send(chatID, txtCancelled)
		} else {
			h.send(chatID, txtNoCancel)
		}

	case "list":
		h.handleList(chatID, userID)

	case "settings":
		m := tgbotapi.NewMessage(chatID, txtSettingsMenu)
		m.ReplyMarkup = settingsKB
		h.sendMsg(m)
	}
}

func (h *Handler) handleList(chatID, userID int64) {
	plans, err := h.DB.ListUpcoming(chatID, time.Now())
	if err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("не удалось прочитать планы")
		h.send(chatID, txtStoreErr)
		return
	}
	if len(plans) == 0 {
		h.send(chatID, txtNoPlans)
		return
	}

	loc, _, err := h.TZ.Ensure(userID)
	if err != nil {
		loc = timezone.Default()
	}

	var b strings.Builder
	b.WriteString("Ближайшие планы:\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range plans {
		where := btnHome
		if p.Category == models.CategoryCinema {
			where = btnCinema
		}
		fmt.Fprintf(&b, "• «%s» — %s (%s)\n",
			p.Title, p.ScheduledAt.In(loc).Format("02.01 15:04"), strings.ToLower(where))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s «%s»", btnDelete, p.Title),
				fmt.Sprintf("%s%d", cbDelPrefix, p.ID),
			),
		))
	}

	out := tgbotapi.NewMessage(chatID, b.String())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.sendMsg(out)
}
