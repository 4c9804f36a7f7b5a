package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/retail-tableview/tview"
	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"

	"github.com/rs/zerolog"
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// HTTPSource fetches {"data": [...]} from the local shop API. Every request
// carries the store header the API uses to scope its results.
type HTTPSource struct {
	BaseURL string
	Path    string
	Store   string
	Client  *http.Client
	Logger  zerolog.Logger
	// Map converts one element of data to a row. A nil Map keeps the
	// decoded object as is.
	Map func(raw json.RawMessage) (engine.Row, error)
}

// NewHTTPSource returns a source with a client bounded by timeout.
func NewHTTPSource(baseURL, path, store string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = time.Duration(internal.DefaultAPITimeoutSecs) * time.Second
	}
	return &HTTPSource{
		BaseURL: baseURL,
		Path:    path,
		Store:   store,
		Client:  &http.Client{Timeout: timeout},
		Logger:  internal.GetLogger(),
	}
}

// NewItemsSource reads GET /items and maps each item to an item-list row.
func NewItemsSource(baseURL, store string, timeout time.Duration) *HTTPSource {
	s := NewHTTPSource(baseURL, "/items", store, timeout)
	s.Map = mapItem
	return s
}

type envelope struct {
	Data []json.RawMessage `json:"data"`
}

func (s *HTTPSource) url() string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(s.Path, "/")
}

func (s *HTTPSource) Load(ctx context.Context) ([]engine.Row, error) {
	url := s.url()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.Store != "" {
		req.Header.Set("store", s.Store)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}

	rows := make([]engine.Row, 0, len(env.Data))
	for i, raw := range env.Data {
		row, err := s.mapRow(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: element %d: %w", url, i, err)
		}
		rows = append(rows, row)
	}
	s.Logger.Debug().
		Str("url", url).
		Str("store", s.Store).
		Int("rows", len(rows)).
		Dur("took", time.Since(start)).
		Msg("fetched rows")
	return rows, nil
}

func (s *HTTPSource) mapRow(raw json.RawMessage) (engine.Row, error) {
	if s.Map != nil {
		return s.Map(raw)
	}
	var row engine.Row
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Quantity is an item pack size such as {750, "ml", "750ml"}. It renders
// and filters as its identifier and sorts by Value.
type Quantity struct {
	Size       string  `json:"size"`
	Value      float64 `json:"value"`
	Identifier string  `json:"identifier"`
}

func (q Quantity) String() string { return q.Identifier }

// Measure exposes Value to the quantity comparator.
func (q Quantity) Measure() float64 { return q.Value }

func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.Identifier), nil
}

// flexFloat accepts both 320 and "320.00"; the API sends prices as strings.
type flexFloat struct {
	value float64
	valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = flexFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*f = flexFloat{value: v, valid: true}
	return nil
}

func (f flexFloat) cell() any {
	if !f.valid {
		return nil
	}
	return f.value
}

type apiItem struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"name"`
	CostPrice flexFloat   `json:"cost_price"`
	SalePrice flexFloat   `json:"sale_price"`
	Quantity  *Quantity   `json:"quantity"`
}

func mapItem(raw json.RawMessage) (engine.Row, error) {
	var it apiItem
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, err
	}
	row := engine.Row{
		"id":           it.ID.String(),
		"itemName":     it.Name,
		"costPrice":    it.CostPrice.cell(),
		"sellingPrice": it.SalePrice.cell(),
	}
	if it.Quantity != nil {
		row["quantity"] = *it.Quantity
	} else {
		row["quantity"] = nil
	}
	return row, nil
}
