package models

import "time"

// Category определяет, где планируется просмотр: дома или в кино.
// От категории зависит час по умолчанию при разборе даты без времени.
type Category string

const (
	CategoryHome   Category = "home"
	CategoryCinema Category = "cinema"
)

// User represents a registered chat.
type User struct {
	ID        int64 `db:"id"`
	ChatID    int64 `db:"chat_id"`
	CreatedAt int64 `db:"created_at"`
}

// Item — запись каталога (фильм/сериал), на которую ссылаются планы.
type Item struct {
	ID        int64  `db:"id"`
	ChatID    int64  `db:"chat_id"`
	Title     string `db:"title"`
	Link      string `db:"link"`
	CreatedAt int64  `db:"created_at"`
}

// Plan — намерение посмотреть Item в конкретный момент.
// ScheduledAt хранится в UTC; перевод в локальное время — на границах.
type Plan struct {
	ID           int64     `db:"id"`
	ChatID       int64     `db:"chat_id"`
	ItemID       int64     `db:"item_id"`
	Category     Category  `db:"category"`
	ScheduledAt  time.Time `db:"scheduled_at"`
	ReminderSent bool      `db:"reminder_sent"`
	CreatedBy    int64     `db:"created_by"`
	CreatedAt    int64     `db:"created_at"`
}

// PlanWithItem — план вместе с названием фильма (join с items).
type PlanWithItem struct {
	Plan
	Title string `db:"title"`
}
