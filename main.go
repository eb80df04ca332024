package main

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"telegram-watch-planner/internal/config"
	"telegram-watch-planner/internal/handlers"
	"telegram-watch-planner/internal/lookup"
	"telegram-watch-planner/internal/scheduler"
	"telegram-watch-planner/internal/storage"
	"telegram-watch-planner/internal/timezone"
	"telegram-watch-planner/internal/wizard"
)

func main() {
	cfg := config.Load()

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("не удалось открыть базу")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logrus.WithError(err).Fatal("не удалось авторизовать бота")
	}
	logrus.WithField("username", bot.Self.UserName).Info("бот авторизован")

	tz := timezone.NewService(db)
	wiz := wizard.New(db, db, tz)
	h := handlers.New(bot, db, wiz, tz, lookup.New(cfg.KinopoiskBaseURL, cfg.KinopoiskAPIKey))

	sched, err := scheduler.Start(scheduler.NewSweeper(db, h))
	if err != nil {
		logrus.WithError(err).Fatal("не удалось запустить планировщик")
	}
	defer func() { _ = sched.Shutdown() }()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	for upd := range bot.GetUpdatesChan(updateConfig) {
		h.HandleUpdate(upd)
	}
}
