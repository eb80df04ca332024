package timeparse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"telegram-watch-planner/internal/models"
)

// ErrUnresolved — текст не совпал ни с одним известным шаблоном даты.
var ErrUnresolved = errors.New("timeparse: выражение не распознано")

// Часы по умолчанию, если время не указано явно.
// Для дома — вечер в будни и позднее утро в выходные,
// для кино — фиксированное утро. Это продуктовое правило.
const (
	homeWeekdayHour = 20
	homeWeekendHour = 11
	cinemaHour      = 10
)

const monthAlt = `январ|феврал|март|апрел|ма[йя]|июн|июл|август|сентябр|октябр|ноябр|декабр`

var (
	timeRx         = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	dayMonthRx     = regexp.MustCompile(`\b(\d{1,2})\s+(` + monthAlt + `)[а-я]*`)
	dayMonthTimeRx = regexp.MustCompile(`\b(\d{1,2})\s+(` + monthAlt + `)[а-я]*\s+(\d{1,2}):(\d{2})\b`)
	numericRx      = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})(?:\.(\d{4}))?\b`)
)

var weekdayStems = []struct {
	stem string
	day  time.Weekday
}{
	{"понедельник", time.Monday},
	{"вторник", time.Tuesday},
	{"сред", time.Wednesday},
	{"четверг", time.Thursday},
	{"пятниц", time.Friday},
	{"суббот", time.Saturday},
	{"воскресен", time.Sunday},
}

// Resolve разбирает свободный текст («завтра», «в субботу 20:00»,
// «15 января», «05.03.2025 18:30») в конкретный момент времени.
// now задаёт точку отсчёта и часовой пояс: вся арифметика выполняется
// в now.Location(), перевод в UTC — забота хранилища. Функция чистая.
//
// Порядок веток значим: сначала «богатые» шаблоны (дата+время одним
// куском), затем извлечение времени, затем одиночные шаблоны даты.
func Resolve(text string, now time.Time, cat models.Category) (time.Time, error) {
	text = strings.ToLower(text)

	// 1. дата и время одним куском: «15 января 20:00»
	if m := dayMonthTimeRx.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		if h, min, ok := clock(m[3], m[4]); ok && validDay(day) {
			return rollYearInstant(now, monthByStem(m[2]), day, h, min), nil
		}
	}
	// «в субботу 20:00»
	if wd, ok := weekdayIn(text); ok {
		if m := timeRx.FindStringSubmatch(text); m != nil {
			if h, min, ok2 := clock(m[1], m[2]); ok2 {
				return at(nextWeekday(now, wd), h, min), nil
			}
		}
	}

	// 2. явное время откладываем в сторону, применим к любой ветке даты
	hasTime := false
	var eh, em int
	if m := timeRx.FindStringSubmatch(text); m != nil {
		if h, min, ok := clock(m[1], m[2]); ok {
			hasTime, eh, em = true, h, min
		}
	}
	withTime := func(day time.Time) time.Time {
		if hasTime {
			return at(day, eh, em)
		}
		return at(day, defaultHour(cat, day), 0)
	}

	// 3. день недели: всегда следующее вхождение, строго в будущем
	if wd, ok := weekdayIn(text); ok {
		return withTime(nextWeekday(now, wd)), nil
	}

	// 4. сегодня / завтра
	if strings.Contains(text, "сегодня") {
		return withTime(now), nil
	}
	if strings.Contains(text, "завтра") {
		return withTime(now.AddDate(0, 0, 1)), nil
	}

	// 5. «на следующей неделе» — якорный день недели по категории
	if strings.Contains(text, "следующ") && strings.Contains(text, "недел") {
		return withTime(nextWeekAnchor(now, cat)), nil
	}

	// 6. число + название месяца: «15 января»
	if m := dayMonthRx.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		if validDay(day) {
			return withTime(rollYearDate(now, monthByStem(m[2]), day)), nil
		}
	}

	// 7. DD.MM[.YYYY]
	if m := numericRx.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		if validDay(day) && mon >= 1 && mon <= 12 {
			if m[3] != "" {
				year, _ := strconv.Atoi(m[3])
				d := time.Date(year, time.Month(mon), day, 0, 0, 0, 0, now.Location())
				return withTime(d), nil
			}
			return withTime(rollYearDate(now, time.Month(mon), day)), nil
		}
	}

	return time.Time{}, ErrUnresolved
}

func defaultHour(cat models.Category, day time.Time) int {
	if cat == models.CategoryCinema {
		return cinemaHour
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return homeWeekendHour
	}
	return homeWeekdayHour
}

func at(day time.Time, h, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), h, min, 0, 0, day.Location())
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func clock(hs, ms string) (h, min int, ok bool) {
	h, _ = strconv.Atoi(hs)
	min, _ = strconv.Atoi(ms)
	return h, min, h <= 23 && min <= 59
}

func validDay(d int) bool { return d >= 1 && d <= 31 }

func weekdayIn(text string) (time.Weekday, bool) {
	for _, w := range weekdayStems {
		if strings.Contains(text, w.stem) {
			return w.day, true
		}
	}
	return 0, false
}

// nextWeekday — ближайший такой день строго после now: голое название
// дня недели никогда не означает сегодня, при нулевой дельте — плюс неделя.
func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return now.AddDate(0, 0, delta)
}

// nextWeekAnchor: дома — суббота, в кино — четверг. Если якорь этой
// недели уже прошёл, берём через две недели, иначе — следующую:
// результат всегда не ближе семи дней.
func nextWeekAnchor(now time.Time, cat models.Category) time.Time {
	off := 5 // суббота, от понедельника
	if cat == models.CategoryCinema {
		off = 3 // четверг
	}
	fromMonday := (int(now.Weekday()) + 6) % 7
	this := dateOf(now).AddDate(0, 0, off-fromMonday)
	if this.Before(dateOf(now)) {
		return this.AddDate(0, 0, 14)
	}
	return this.AddDate(0, 0, 7)
}

// rollYearInstant: текущий год, а если момент уже прошёл — следующий.
func rollYearInstant(now time.Time, mon time.Month, day, h, min int) time.Time {
	c := time.Date(now.Year(), mon, day, h, min, 0, 0, now.Location())
	if !c.After(now) {
		c = time.Date(now.Year()+1, mon, day, h, min, 0, 0, now.Location())
	}
	return c
}

// rollYearDate: то же правило на уровне даты (без учёта времени суток).
func rollYearDate(now time.Time, mon time.Month, day int) time.Time {
	c := time.Date(now.Year(), mon, day, 0, 0, 0, 0, now.Location())
	if c.Before(dateOf(now)) {
		c = time.Date(now.Year()+1, mon, day, 0, 0, 0, 0, now.Location())
	}
	return c
}

func monthByStem(s string) time.Month {
	switch {
	case strings.HasPrefix(s, "январ"):
		return time.January
	case strings.HasPrefix(s, "феврал"):
		return time.February
	case strings.HasPrefix(s, "март"):
		return time.March
	case strings.HasPrefix(s, "апрел"):
		return time.April
	case strings.HasPrefix(s, "ма"):
		return time.May
	case strings.HasPrefix(s, "июн"):
		return time.June
	case strings.HasPrefix(s, "июл"):
		return time.July
	case strings.HasPrefix(s, "август"):
		return time.August
	case strings.HasPrefix(s, "сентябр"):
		return time.September
	case strings.HasPrefix(s, "октябр"):
		return time.October
	case strings.HasPrefix(s, "ноябр"):
		return time.November
	default:
		return time.December
	}
}
