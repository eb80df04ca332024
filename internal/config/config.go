package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	TelegramToken    string
	DBPath           string
	KinopoiskBaseURL string
	KinopoiskAPIKey  string
}

func Load() Config {
	_ = godotenv.Load() // TELEGRAM_BOT_TOKEN etc.

	return Config{
		TelegramToken:    getBotToken(),
		DBPath:           envOr("DB_PATH", "bot.db"),
		KinopoiskBaseURL: envOr("KINOPOISK_BASE_URL", "https://kinopoiskapiunofficial.tech"),
		KinopoiskAPIKey:  strings.TrimSpace(os.Getenv("KINOPOISK_API_KEY")),
	}
}

func getBotToken() string {
	if data, err := os.ReadFile("/run/secrets/telegram_bot_token"); err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token
		}
	}
	if token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); token != "" {
		return token
	}
	logrus.Fatal("токен не найден: отсутствует и Docker Secret, и переменная окружения")
	return ""
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
