package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Film — краткая карточка фильма из внешнего справочника.
type Film struct {
	Title string
	Year  string
	URL   string
}

// Client ходит в kinopoiskapiunofficial.tech. Медленный и необязательный:
// вызывающая сторона оборачивает его в enrich.Load и не ждёт дольше
// собственного дедлайна.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled — ключ может быть не настроен, тогда обогащение выключено.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type searchResponse struct {
	Films []struct {
		FilmID int    `json:"filmId"`
		NameRu string `json:"nameRu"`
		NameEn string `json:"nameEn"`
		Year   string `json:"year"`
	} `json:"films"`
}

// SearchFilm ищет фильм по названию и возвращает первую подходящую карточку.
func (c *Client) SearchFilm(ctx context.Context, title string) (*Film, error) {
	u := c.baseURL + "/api/v2.1/films/search-by-keyword?keyword=" + url.QueryEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup: статус %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}
	if len(sr.Films) == 0 {
		return nil, fmt.Errorf("lookup: фильм %q не найден", title)
	}

	f := sr.Films[0]
	name := f.NameRu
	if name == "" {
		name = f.NameEn
	}
	return &Film{
		Title: name,
		Year:  f.Year,
		URL:   fmt.Sprintf("https://www.kinopoisk.ru/film/%d/", f.FilmID),
	}, nil
}
