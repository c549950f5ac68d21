package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/polymarket-window-dashboard/internal/charts"
	"github.com/polymarket-window-dashboard/internal/config"
	"github.com/polymarket-window-dashboard/internal/model"
	"github.com/polymarket-window-dashboard/internal/pipeline"
	"github.com/polymarket-window-dashboard/internal/state"
	"github.com/polymarket-window-dashboard/internal/table"
	"github.com/polymarket-window-dashboard/internal/web"
)

// FetchErrorMessage is the only failure detail exposed to clients.
const FetchErrorMessage = "Failed to fetch market data"

// Source is satisfied by *pipeline.Pipeline.
type Source interface {
	Events(ctx context.Context) ([]model.Event, error)
	Rows(ctx context.Context, sortCfg table.SortConfig) ([]table.Row, error)
	Run(ctx context.Context, sortCfg table.SortConfig) <-chan pipeline.Result
}

type Server struct {
	config     config.APIConfig
	windowDays int
	source     Source
	logger     *zap.Logger
	server     *http.Server
}

func NewServer(cfg config.APIConfig, windowDays int, source Source, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		config:     cfg,
		windowDays: windowDays,
		source:     source,
		logger:     logger,
	}
}

// Handler builds the routed, CORS-wrapped handler used by Run.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(requestID, accessLog(s.logger))

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           3600,
	})

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/markets", s.getMarkets).Methods("GET")
	api.HandleFunc("/rows", s.getRows).Methods("GET")
	api.HandleFunc("/charts", s.getCharts).Methods("GET")
	api.HandleFunc("/health", s.getHealth).Methods("GET")

	router.HandleFunc("/", s.getIndex).Methods("GET")

	return c.Handler(router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.config.BindAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server starting", zap.String("addr", s.config.BindAddress))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// getMarkets returns the window-filtered events, one page at a time when
// pagination is enabled.
func (s *Server) getMarkets(w http.ResponseWriter, r *http.Request) {
	events, err := s.source.Events(r.Context())
	if err != nil {
		s.fetchFailed(w, r, err)
		return
	}

	if s.config.Paginate {
		events = paginate(events, pageParam(r), s.config.ItemsPerPage)
	}
	if events == nil {
		events = []model.Event{}
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, struct {
		Markets []model.Event `json:"markets"`
	}{Markets: events})
}

func (s *Server) getRows(w http.ResponseWriter, r *http.Request) {
	sortCfg := web.SortFromQuery(r.URL.Query())

	rows, err := s.source.Rows(r.Context(), sortCfg)
	if err != nil {
		s.fetchFailed(w, r, err)
		return
	}
	if rows == nil {
		rows = []table.Row{}
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, struct {
		Rows []table.Row      `json:"rows"`
		Sort table.SortConfig `json:"sort"`
	}{Rows: rows, Sort: sortCfg})
}

func (s *Server) getCharts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.source.Rows(r.Context(), table.SortConfig{})
	if err != nil {
		s.fetchFailed(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, struct {
		Volume     charts.Data `json:"volume"`
		OddsVolume charts.Data `json:"oddsVolume"`
	}{
		Volume:     charts.VolumeBar(rows, s.config.ChartSize),
		OddsVolume: charts.OddsVolumeLine(rows, s.config.ChartSize),
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	view := state.Reduce(state.WithSort(web.SortFromQuery(r.URL.Query())), state.FetchStarted{})

	res := <-s.source.Run(r.Context(), view.Sort)
	if res.Err != nil {
		s.logger.Error("dashboard refresh failed", zap.Error(res.Err), zap.String("request_id", requestIDFrom(r.Context())))
		view = state.Reduce(view, state.FetchFailed{Err: errors.New(FetchErrorMessage)})
	} else {
		view = state.Reduce(view, state.FetchSucceeded{Rows: res.Rows})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if view.Err != "" {
		w.WriteHeader(http.StatusInternalServerError)
	}
	if err := web.Render(w, web.NewPage(view, s.windowDays, s.config.ChartSize)); err != nil {
		s.logger.Error("render dashboard", zap.Error(err))
	}
}

func (s *Server) fetchFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("fetch market data",
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestIDFrom(r.Context())),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": FetchErrorMessage})
}

// pageParam reads ?page=, treating anything below 1 or unparseable as 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func paginate(events []model.Event, page, perPage int) []model.Event {
	if perPage <= 0 {
		return events
	}
	// compare before multiplying so huge pages cannot overflow
	if page < 1 || len(events) == 0 || page-1 > (len(events)-1)/perPage {
		return []model.Event{}
	}
	start := (page - 1) * perPage
	if rest := len(events) - start; perPage < rest {
		return events[start : start+perPage]
	}
	return events[start:]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
