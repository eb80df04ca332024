package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-watch-planner/internal/timezone"
)

const (
	btnHome   = "Дома"
	btnCinema = "В кино"
	btnDelete = "Удалить"

	cbCatHome   = "cat:home"
	cbCatCinema = "cat:cinema"
	cbTZPrefix  = "tz:"
	cbDelPrefix = "del:"

	cbSettingsTZ    = "settings_tz"
	cbSettingsClear = "clear_data"

	menuTZ    = "Сменить часовой пояс"
	menuClear = "Очистить данные"
)

const (
	txtWelcome = "Привет! Я помогаю планировать просмотр фильмов.\n" +
		"/plan — запланировать просмотр\n" +
		"/list — ближайшие планы\n" +
		"/cancel — отменить начатый план\n" +
		"/settings — настройки"
	txtAskItem     = "Что смотрим? Пришли название или ссылку."
	txtAskCategory = "Где смотрим?"
	txtAskWhen     = "Когда? Например: «завтра», «в субботу 20:00», «15 января»."
	txtRetryWhen   = "Не понял дату. Примеры: «завтра», «в пятницу», " +
		"«в субботу 20:00», «15 января», «05.03.2026 18:30». Или /cancel."
	txtAskTZ        = "Сначала выбери свой часовой пояс:"
	txtTZLater      = "Кстати, выбери часовой пояс — пригодится в следующий раз:"
	txtTZSaved      = "Часовой пояс сохранён."
	txtCancelled    = "Ок, отменил."
	txtNoCancel     = "Нечего отменять."
	txtNoPlans      = "Планов пока нет. /plan — создать."
	txtPlanDeleted  = "План удалён."
	txtDataCleared  = "Данные чата очищены."
	txtStoreErr     = "Что-то пошло не так, попробуй ещё раз."
	txtSettingsMenu = "Настройки"
)

var categoryKB = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnHome, cbCatHome),
		tgbotapi.NewInlineKeyboardButtonData(btnCinema, cbCatCinema),
	),
)

var settingsKB = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(menuTZ, cbSettingsTZ),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(menuClear, cbSettingsClear),
	),
)

// Клавиатура выбора пояса — фиксированный каталог, по два в ряд.
func timezoneKB() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, z := range timezone.Catalog {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(z.Label, cbTZPrefix+z.ID))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
