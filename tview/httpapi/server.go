// Package httpapi serves the list views as JSON. Every request is
// stateless: query, sort and page arrive as query parameters.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"time"

	internal "github.com/ZanzyTHEbar/retail-tableview/tview"
	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
	"github.com/ZanzyTHEbar/retail-tableview/tview/store"
	"github.com/ZanzyTHEbar/retail-tableview/tview/view"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Endpoint is one view exposed by the server.
type Endpoint struct {
	Name    string
	Title   string
	Columns []engine.ColumnSpec
	Store   *store.Store
}

type endpoint struct {
	Endpoint
	pipe *view.Pipeline
}

// Options tune paging and caching for every endpoint.
type Options struct {
	PageSize        int
	PageSizeOptions []int
	Locale          language.Tag
	Cache           bool
}

// Server renders views on demand.
type Server struct {
	views  map[string]*endpoint
	opts   Options
	logger zerolog.Logger
}

// New builds a server over endpoints. Column specs are validated here so a
// bad catalog fails at startup.
func New(endpoints []Endpoint, opts Options, logger zerolog.Logger) (*Server, error) {
	if opts.PageSize == 0 {
		opts.PageSize = internal.DefaultPageSize
	}
	if len(opts.PageSizeOptions) == 0 {
		opts.PageSizeOptions = internal.DefaultPageSizeOptions
	}
	s := &Server{
		views:  make(map[string]*endpoint, len(endpoints)),
		opts:   opts,
		logger: logger,
	}
	for _, ep := range endpoints {
		if err := engine.ValidateColumns(ep.Columns); err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", ep.Name, err)
		}
		if ep.Store == nil {
			ep.Store = store.New(nil)
		}
		s.views[ep.Name] = &endpoint{
			Endpoint: ep,
			pipe:     view.NewPipeline(ep.Columns, opts.Locale, opts.Cache, 0),
		}
	}
	return s, nil
}

// RegisterHTTP mounts the view routes on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/views", s.handleList)
	r.Get("/views/{name}", s.handleWindow)
	r.Get("/views/{name}/jump", s.handleJump)
	r.Get("/views/{name}/summary/{column}", s.handleSummary)
}

// Handler returns a router with request ids, panic recovery and request
// logging in front of the view routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	s.RegisterHTTP(r)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

type viewInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Rows  int    `json:"rows"`
}

type columnInfo struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
	Type     string `json:"type"`
}

// WindowResponse is the body of a window or jump request.
type WindowResponse struct {
	View      string           `json:"view"`
	Query     string           `json:"query"`
	Sort      string           `json:"sort"`
	Total     int              `json:"total"`
	PageCount int              `json:"pageCount"`
	PageIndex int              `json:"pageIndex"`
	PageSize  int              `json:"pageSize"`
	Columns   []columnInfo     `json:"columns"`
	Rows      []map[string]any `json:"rows"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Requested *int   `json:"requested,omitempty"`
	PageCount *int   `json:"pageCount,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	out := make([]viewInfo, 0, len(s.views))
	for _, e := range s.views {
		out = append(out, viewInfo{Name: e.Name, Title: e.Title, Rows: e.Store.Len()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	s.writeJSON(w, http.StatusOK, out)
}

// handleWindow serves GET /views/{name}?q=&sort=&dir=&page=&size=
func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	req, err := s.parseRequest(r, e)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	page, err := intParam(r, "page", 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if page < 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("page must not be negative: %d", page))
		return
	}

	win, err := e.pipe.Window(e.Store.Snapshot(), s.query(req, page))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.windowResponse(e, req, win))
}

// handleJump serves GET /views/{name}/jump?target=N with a 1-based target.
func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	req, err := s.parseRequest(r, e)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if r.URL.Query().Get("target") == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("target is required"))
		return
	}
	target, err := intParam(r, "target", 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	win, err := e.pipe.Jump(e.Store.Snapshot(), s.query(req, 0), target)
	if errors.Is(err, engine.ErrInvalidPage) {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.windowResponse(e, req, win))
}

// handleSummary serves GET /views/{name}/summary/{column}?q=
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	columnID := chi.URLParam(r, "column")
	col, found := engine.FindColumn(e.Columns, columnID)
	if !found {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", engine.ErrColumnNotFound, columnID))
		return
	}
	if col.DataType != engine.Number {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", view.ErrNotNumeric, columnID))
		return
	}
	rows := e.pipe.Filtered(e.Store.Snapshot(), r.URL.Query().Get("q"))
	s.writeJSON(w, http.StatusOK, view.SummarizeRows(rows, columnID))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*endpoint, bool) {
	name := chi.URLParam(r, "name")
	e, ok := s.views[name]
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown view %q", name))
		return nil, false
	}
	return e, true
}

type windowRequest struct {
	query string
	sort  engine.SortState
	size  int
}

func (s *Server) parseRequest(r *http.Request, e *endpoint) (windowRequest, error) {
	q := r.URL.Query()
	req := windowRequest{query: q.Get("q")}

	if key := q.Get("sort"); key != "" {
		col, ok := engine.FindColumn(e.Columns, key)
		if !ok {
			return req, fmt.Errorf("%w: %q", engine.ErrColumnNotFound, key)
		}
		if !col.Sortable {
			return req, fmt.Errorf("%w: %q", engine.ErrColumnNotSortable, key)
		}
		dir, err := engine.ParseDirection(q.Get("dir"))
		if err != nil {
			return req, err
		}
		req.sort = engine.SortState{Key: key, Direction: dir}
	} else if _, err := engine.ParseDirection(q.Get("dir")); err != nil {
		return req, err
	}

	size, err := intParam(r, "size", s.opts.PageSize)
	if err != nil {
		return req, err
	}
	if size < 1 || !slices.Contains(s.opts.PageSizeOptions, size) {
		return req, fmt.Errorf("%w: %d not in %v", engine.ErrInvalidPageSize, size, s.opts.PageSizeOptions)
	}
	req.size = size
	return req, nil
}

func intParam(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", key, raw)
	}
	return n, nil
}

func (s *Server) query(req windowRequest, page int) engine.Query {
	return engine.Query{
		Filter: engine.FilterState{Query: req.query},
		Sort:   req.sort,
		Page:   engine.PageState{Index: page, Size: req.size},
		Locale: s.opts.Locale,
	}
}

func (s *Server) windowResponse(e *endpoint, req windowRequest, win engine.Window) WindowResponse {
	cols := make([]columnInfo, len(e.Columns))
	for i, c := range e.Columns {
		cols[i] = columnInfo{ID: c.ID, Label: c.Label, Sortable: c.Sortable, Type: c.DataType.String()}
	}
	rows := make([]map[string]any, len(win.Visible))
	for i, row := range win.Visible {
		out := make(map[string]any, len(e.Columns))
		for _, c := range e.Columns {
			out[c.ID] = row.Get(c.ID)
		}
		rows[i] = out
	}
	return WindowResponse{
		View:      e.Name,
		Query:     req.query,
		Sort:      req.sort.String(),
		Total:     win.Total,
		PageCount: win.PageCount,
		PageIndex: win.PageIndex,
		PageSize:  win.PageSize,
		Columns:   cols,
		Rows:      rows,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	body := errorResponse{Error: err.Error()}
	var pe *engine.InvalidPageError
	if errors.As(err, &pe) {
		body.Requested = &pe.Requested
		body.PageCount = &pe.PageCount
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Int("status", status).Msg("request failed")
	}
	s.writeJSON(w, status, body)
}
