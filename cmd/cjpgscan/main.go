// Command cjpgscan serves the run/list API and the operator page for the
// CJPG decision harvester.
package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "modernc.org/sqlite"

	"github.com/rfcoelho/cjpgscan/cjpg"
	"github.com/rfcoelho/cjpgscan/config"
	"github.com/rfcoelho/cjpgscan/dbopen"
	"github.com/rfcoelho/cjpgscan/docpipe"
	"github.com/rfcoelho/cjpgscan/store"
)

//go:embed static
var staticFS embed.FS

// listLimit bounds the decisions listing endpoint.
const listLimit = 500

func main() {
	logLevel := env("LOG_LEVEL", "info")
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := dbopen.Open(cfg.Storage.DatabasePath,
		dbopen.WithMkdirAll(), dbopen.WithSchema(store.Schema))
	if err != nil {
		slog.Error("decisions db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	st := store.NewStore(db)
	pipe := docpipe.New(docpipe.Config{Logger: logger})
	app := &application{cfg: cfg, store: st, pipe: pipe, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/api/run", app.handleRun)
	r.Get("/api/decisions", app.handleDecisions)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		slog.Error("static fs", "error", err)
		os.Exit(1)
	}
	r.Handle("/*", http.FileServer(http.FS(static)))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("cjpgscan listening", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server", "error", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration file path from CONFIG_FILE, falls
// back to defaults when unset, and lets PORT and CJPG_URL override the
// listener and portal addresses. This is the only place that reads the
// environment.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if u := os.Getenv("CJPG_URL"); u != "" {
		cfg.Portal.QueryURL = u
	}
	return cfg, nil
}

type application struct {
	cfg    *config.Config
	store  *store.Store
	pipe   *docpipe.Pipeline
	logger *slog.Logger

	// runMu serializes session runs: the browser and the sink belong to
	// one active session at a time.
	runMu sync.Mutex
}

type runRequest struct {
	DateFrom     string `json:"dateFrom"`
	DateTo       string `json:"dateTo"`
	Judge        string `json:"judge"`
	MaxDocuments int    `json:"maxDocuments"`
}

func (app *application) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	crit := cjpg.Criteria{
		DateFrom:     firstNonEmpty(req.DateFrom, app.cfg.Search.DateFrom),
		DateTo:       firstNonEmpty(req.DateTo, app.cfg.Search.DateTo),
		Judge:        firstNonEmpty(req.Judge, app.cfg.Search.Judge),
		MaxDocuments: req.MaxDocuments,
	}
	if crit.MaxDocuments == 0 {
		crit.MaxDocuments = app.cfg.Search.MaxDocuments
	}
	if err := crit.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !app.runMu.TryLock() {
		writeError(w, http.StatusConflict, "a session run is already in progress")
		return
	}
	defer app.runMu.Unlock()

	session := cjpg.NewSession(cjpg.Config{
		QueryURL:        app.cfg.Portal.QueryURL,
		Headless:        app.cfg.Portal.Headless,
		SlowMotion:      app.cfg.Portal.SlowMotion,
		SettleDelay:     app.cfg.Portal.SettleDelay,
		SubmitTimeout:   app.cfg.Portal.SubmitTimeout,
		SelectorTimeout: app.cfg.Portal.SelectorTimeout,
		CaptureTimeout:  app.cfg.Portal.CaptureTimeout,
		MinFallbackText: app.cfg.Portal.MinFallbackText,
		RawDir:          app.cfg.Storage.RawDir,
		Logger:          app.logger,
	}, app.pipe, app.store)

	res, err := session.Run(r.Context(), crit)
	if err != nil {
		if errors.Is(err, cjpg.ErrInvalidCriteria) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		app.logger.Error("session run failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (app *application) handleDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := app.store.ListRecent(r.Context(), listLimit)
	if err != nil {
		app.logger.Error("list decisions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query decisions")
		return
	}
	if decisions == nil {
		decisions = []*store.Decision{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
