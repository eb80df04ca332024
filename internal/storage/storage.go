package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"telegram-watch-planner/internal/models"
)

//go:embed schema.sql
var ddl embed.FS

type DB struct{ *sql.DB }

func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = migrate(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

// ClearData полностью очищает данные чата: планы, каталог, регистрацию.
// Часовые пояса привязаны к пользователям, а не к чату, и остаются.
func (d *DB) ClearData(chatID int64) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tables := []string{"plans", "items", "users"}
	for _, tbl := range tables {
		if _, err := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE chat_id = ?", tbl),
			chatID,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ---------- users -----------------------------------------------------------

func (d *DB) UpsertUser(chatID int64) error {
	_, err := d.Exec(`
        INSERT INTO users (chat_id, created_at) VALUES (?,?)
        ON CONFLICT(chat_id) DO NOTHING
    `, chatID, time.Now().Unix())
	return err
}

func (d *DB) GetUser(chatID int64) (*models.User, error) {
	var u models.User
	err := d.QueryRow(`
        SELECT id, chat_id, created_at FROM users WHERE chat_id=?`, chatID,
	).Scan(&u.ID, &u.ChatID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ---------- timezones -------------------------------------------------------

// GetTimezone возвращает "" если пояс для пользователя ещё не выбран.
func (d *DB) GetTimezone(userID int64) (string, error) {
	var tz string
	err := d.QueryRow(`SELECT tz FROM timezones WHERE user_id=?`, userID).Scan(&tz)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return tz, err
}

func (d *DB) PutTimezone(userID int64, tz string) error {
	_, err := d.Exec(`
        INSERT INTO timezones (user_id, tz, created_at) VALUES (?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET tz=excluded.tz
    `, userID, tz, time.Now().Unix())
	return err
}

// ---------- items -----------------------------------------------------------

// ResolveOrRegisterItem находит запись каталога по названию или создаёт её.
func (d *DB) ResolveOrRegisterItem(chatID int64, title, link string) (int64, error) {
	var id int64
	err := d.QueryRow(`
        SELECT id FROM items WHERE chat_id=? AND title=?`, chatID, title,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := d.Exec(`
        INSERT INTO items (chat_id, title, link, created_at) VALUES (?,?,?,?)
    `, chatID, title, link, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) GetItem(id int64) (*models.Item, error) {
	var it models.Item
	err := d.QueryRow(`
        SELECT id, chat_id, title, link, created_at FROM items WHERE id=?`, id,
	).Scan(&it.ID, &it.ChatID, &it.Title, &it.Link, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ---------- plans -----------------------------------------------------------

func (d *DB) InsertPlan(p *models.Plan) error {
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	res, err := d.Exec(`
        INSERT INTO plans (chat_id, item_id, category, scheduled_at, reminder_sent, created_by, created_at)
        VALUES (?,?,?,?,0,?,?)
    `, p.ChatID, p.ItemID, string(p.Category), p.ScheduledAt.UTC().Unix(), p.CreatedBy, p.CreatedAt)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

const planColumns = `p.id, p.chat_id, p.item_id, p.category, p.scheduled_at,
        p.reminder_sent, p.created_by, p.created_at, i.title`

func scanPlan(rows *sql.Rows) (models.PlanWithItem, error) {
	var p models.PlanWithItem
	var cat string
	var ts int64
	err := rows.Scan(&p.ID, &p.ChatID, &p.ItemID, &cat, &ts,
		&p.ReminderSent, &p.CreatedBy, &p.CreatedAt, &p.Title)
	if err != nil {
		return p, err
	}
	p.Category = models.Category(cat)
	p.ScheduledAt = time.Unix(ts, 0).UTC()
	return p, nil
}

// FindDueUnsent возвращает планы, которым пора напомнить.
// Без курсора: «пора» пересчитывается от текущего времени на каждом проходе.
func (d *DB) FindDueUnsent(now time.Time) ([]models.PlanWithItem, error) {
	rows, err := d.Query(`
        SELECT `+planColumns+`
        FROM plans p JOIN items i ON i.id = p.item_id
        WHERE p.reminder_sent = 0 AND p.scheduled_at <= ?
    `, now.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.PlanWithItem
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (d *DB) ListUpcoming(chatID int64, now time.Time) ([]models.PlanWithItem, error) {
	rows, err := d.Query(`
        SELECT `+planColumns+`
        FROM plans p JOIN items i ON i.id = p.item_id
        WHERE p.chat_id = ? AND p.scheduled_at >= ?
        ORDER BY p.scheduled_at
    `, chatID, now.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.PlanWithItem
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// FindByOwnerAndItem — планы чата на конкретный фильм.
func (d *DB) FindByOwnerAndItem(chatID, itemID int64) ([]models.PlanWithItem, error) {
	rows, err := d.Query(`
        SELECT `+planColumns+`
        FROM plans p JOIN items i ON i.id = p.item_id
        WHERE p.chat_id = ? AND p.item_id = ?
        ORDER BY p.scheduled_at
    `, chatID, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.PlanWithItem
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (d *DB) MarkSent(id int64) error {
	_, err := d.Exec(`UPDATE plans SET reminder_sent = 1 WHERE id = ?`, id)
	return err
}

// UpdateScheduledAt переносит план и сбрасывает флаг напоминания:
// перенесённый в прошлое план подхватит ближайший проход планировщика.
func (d *DB) UpdateScheduledAt(id int64, t time.Time) error {
	_, err := d.Exec(`
        UPDATE plans SET scheduled_at = ?, reminder_sent = 0 WHERE id = ?
    `, t.UTC().Unix(), id)
	return err
}

func (d *DB) DeletePlan(id int64) error {
	_, err := d.Exec(`DELETE FROM plans WHERE id = ?`, id)
	return err
}
