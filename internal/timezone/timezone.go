package timezone

import "time"

// Zone — именованный фиксированный сдвиг относительно Москвы.
// IANA-база не нужна: арифметика идёт через time.FixedZone.
type Zone struct {
	ID     string
	Label  string
	Offset int // секунды к востоку от UTC
}

const hour = 3600

// DefaultID используется, пока пользователь не выбрал пояс явно.
const DefaultID = "MSK"

var Catalog = []Zone{
	{ID: "MSK-1", Label: "МСК−1 (Калининград)", Offset: 2 * hour},
	{ID: "MSK", Label: "МСК (Москва)", Offset: 3 * hour},
	{ID: "MSK+1", Label: "МСК+1 (Самара)", Offset: 4 * hour},
	{ID: "MSK+2", Label: "МСК+2 (Екатеринбург)", Offset: 5 * hour},
	{ID: "MSK+3", Label: "МСК+3 (Омск)", Offset: 6 * hour},
	{ID: "MSK+4", Label: "МСК+4 (Красноярск)", Offset: 7 * hour},
	{ID: "MSK+5", Label: "МСК+5 (Иркутск)", Offset: 8 * hour},
	{ID: "MSK+6", Label: "МСК+6 (Якутск)", Offset: 9 * hour},
	{ID: "MSK+7", Label: "МСК+7 (Владивосток)", Offset: 10 * hour},
	{ID: "MSK+9", Label: "МСК+9 (Камчатка)", Offset: 12 * hour},
}

func ByID(id string) (Zone, bool) {
	for _, z := range Catalog {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

func Location(id string) (*time.Location, bool) {
	z, ok := ByID(id)
	if !ok {
		return nil, false
	}
	return time.FixedZone(z.ID, z.Offset), true
}

func Default() *time.Location {
	loc, _ := Location(DefaultID)
	return loc
}

// Store — контракт хранилища поясов: Get возвращает "" если записи нет.
type Store interface {
	GetTimezone(userID int64) (string, error)
	PutTimezone(userID int64, tz string) error
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// Ensure возвращает пояс пользователя. known=false означает, что запись
// отсутствует и пользователя нужно спросить (ровно один раз: после
// Choose запись существует и Ensure больше никогда не даст known=false).
// Никакие эвристики повторный вопрос не вызывают.
func (s *Service) Ensure(userID int64) (loc *time.Location, known bool, err error) {
	tz, err := s.store.GetTimezone(userID)
	if err != nil {
		return nil, false, err
	}
	if tz == "" {
		return Default(), false, nil
	}
	loc, ok := Location(tz)
	if !ok {
		// запись есть, но с неизвестным id — не переспрашиваем
		return Default(), true, nil
	}
	return loc, true, nil
}

// Choose сохраняет явный выбор пользователя. Это единственная мутация
// записи о поясе.
func (s *Service) Choose(userID int64, id string) (*time.Location, error) {
	loc, ok := Location(id)
	if !ok {
		loc = Default()
		id = DefaultID
	}
	if err := s.store.PutTimezone(userID, id); err != nil {
		return nil, err
	}
	return loc, nil
}
