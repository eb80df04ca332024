package handlers

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"telegram-watch-planner/internal/models"
)

func (h *Handler) HandleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	userID := cq.From.ID
	data := cq.Data

	// always answer callback to remove 'loading...'
	_, _ = h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))

	switch {
	case data == cbCatHome:
		h.renderOutcome(chatID, userID, h.Wizard.SetCategory(userID, models.CategoryHome))
	case data == cbCatCinema:
		h.renderOutcome(chatID, userID, h.Wizard.SetCategory(userID, models.CategoryCinema))
	case strings.HasPrefix(data, cbTZPrefix):
		h.handleTimezoneChoice(chatID, userID, strings.TrimPrefix(data, cbTZPrefix))
	case strings.HasPrefix(data, cbDelPrefix):
		h.handleDelete(chatID, strings.TrimPrefix(data, cbDelPrefix))
	case data == cbSettingsTZ:
		h.sendTimezoneKB(chatID, txtAskTZ)
	case data == cbSettingsClear:
		h.handleClear(chatID, userID)
	}
}

// handleTimezoneChoice сохраняет выбор и будит приостановленный мастер,
// если тот ждал пояс для разбора отложенного текста.
func (h *Handler) handleTimezoneChoice(chatID, userID int64, zoneID string) {
	if _, err := h.TZ.Choose(userID, zoneID); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("не удалось сохранить часовой пояс")
		h.send(chatID, txtStoreErr)
		return
	}
	h.send(chatID, txtTZSaved)

	out, err := h.Wizard.ResumeAfterTimezone(userID)
	if err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("шаг мастера не выполнен")
		h.send(chatID, txtStoreErr)
		return
	}
	h.renderOutcome(chatID, userID, out)
}

func (h *Handler) handleDelete(chatID int64, raw string) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return
	}
	if err := h.DB.DeletePlan(id); err != nil {
		logrus.WithError(err).WithField("plan_id", id).Error("не удалось удалить план")
		h.send(chatID, txtStoreErr)
		return
	}
	h.send(chatID, txtPlanDeleted)
}

func (h *Handler) handleClear(chatID, userID int64) {
	h.Wizard.Cancel(userID)
	if err := h.DB.ClearData(chatID); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("не удалось очистить данные")
		h.send(chatID, txtStoreErr)
		return
	}
	h.send(chatID, txtDataCleared)
}
