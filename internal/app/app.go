package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/jgivc/assignfetch/internal/adapter/mdadapter"
	"github.com/jgivc/assignfetch/internal/adapter/tpladapter"
	"github.com/jgivc/assignfetch/internal/assignment"
	"github.com/jgivc/assignfetch/internal/config"
	httphandler "github.com/jgivc/assignfetch/internal/handler/http"
	"github.com/jgivc/assignfetch/internal/repository/ledger"
	srvledger "github.com/jgivc/assignfetch/internal/service/ledger"
	"github.com/jgivc/assignfetch/internal/storage/filehost"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const (
	probeTimeout    = 30 * time.Second
	dumpTimeout     = 5 * time.Second
	shutdownTimeout = 5 * time.Second

	sessionKeyLength = 32
)

type ledgerService interface {
	httphandler.LedgerService
	DumpStats(ctx context.Context, fileName string) error
}

type App struct {
	cfgPath string
	cfg     *config.Config
	srv     *http.Server
	ledger  ledgerService
	prober  httphandler.ProbeService
	closers []func() error
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	log := newLogger(a.cfg)
	a.log = log

	repo, err := a.newRepository(log)
	if err != nil {
		panic(err)
	}

	rule, err := assignment.NewRule(a.cfg.Files)
	if err != nil {
		panic(err)
	}

	fs := afero.NewOsFs()
	a.ledger = srvledger.NewLedgerService(rule, repo, fs, log)
	a.prober = filehost.NewProber(rule, &http.Client{}, &a.cfg.Prober, log)

	notice, err := mdadapter.NewNoticeAdapter(fs, rule, log).Load(a.cfg.HandlerConfig.NoticeFileName)
	if err != nil {
		panic(err)
	}

	tpl, err := tpladapter.NewTplAdapter(a.cfg.HandlerConfig.TemplateFileName)
	if err != nil {
		panic(err)
	}

	secret := []byte(a.cfg.Session.Secret)
	if len(secret) == 0 {
		log.Warn("Session secret is not set, session locks will not survive a restart")
		secret = securecookie.GenerateRandomKey(sessionKeyLength)
	}
	locks := httphandler.NewCookieLockStore(secret, a.cfg.Session.CookieName, a.cfg.Session.MaxAge, log)

	pages := httphandler.NewPageHandlers(a.ledger, rule, tpl, locks,
		httphandler.Notice{Title: notice.Title, HTML: notice.HTML},
		a.cfg.HandlerConfig.RedirectHeader, a.cfg.HandlerConfig.AdminRefresh, log)

	r := mux.NewRouter()
	r.Use(httphandler.NewLoggingMiddleware(log))

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/track-download", httphandler.NewTrackDownloadHandler(a.ledger, log)).Methods(http.MethodPost)
	api.Handle("/download-stats", httphandler.NewStatsHandler(a.ledger, log)).Methods(http.MethodGet)
	api.Handle("/download-summary", httphandler.NewSummaryHandler(a.ledger, log)).Methods(http.MethodGet)

	pages.Register(r)
	r.Handle("/admin/files", httphandler.NewProbeHandler(a.prober, log)).Methods(http.MethodGet)

	a.srv = &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen), slog.String("url", a.cfg.HandlerConfig.URL),
			slog.String("storage", a.cfg.Storage.Backend))

		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) newRepository(log *slog.Logger) (srvledger.LedgerRepository, error) {
	switch a.cfg.Storage.Backend {
	case config.StorageRedis:
		opt, err := redis.ParseURL(a.cfg.Storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("cannot parse redis url: %w", err)
		}

		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("cannot connect to redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)

		return ledger.NewRedisRepository(rdb, a.cfg.Storage.KeyPrefix, log), nil
	case config.StorageSQLite:
		db, err := ledger.OpenSQLite(a.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("cannot get sqlite handle: %w", err)
		}
		a.closers = append(a.closers, sqlDB.Close)

		return ledger.NewSQLiteRepository(db, log)
	default:
		return ledger.NewMemoryRepository(log), nil
	}
}

func (a *App) Dump() {
	ctx, cancel := context.WithTimeout(context.Background(), dumpTimeout)
	defer cancel()

	if err := a.ledger.DumpStats(ctx, a.cfg.Dump.FileName); err != nil {
		a.log.Error("Cannot dump stats", slog.Any("error", err))

		return
	}

	a.log.Info("Stats dumped", slog.String("file", a.cfg.Dump.FileName))
}

func (a *App) Probe() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	fmt.Println("Probing...")

	statuses, err := a.prober.Probe(ctx)
	if err != nil {
		fmt.Printf("Cannot probe file host: %s\n", err)

		return
	}

	for i, st := range statuses {
		state := "ok"
		if !st.Available {
			state = "unavailable"
		}

		fmt.Printf("%d. %s -> %s, status: %d %s\n", i+1, st.Set.Name, st.Set.URL, st.StatusCode, state)
	}

	fmt.Println("Done.")
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		a.log.Error("Cannot shutdown server", slog.Any("error", err))
	}

	if a.cfg.Dump.OnStop {
		a.Dump()
	}

	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.log.Error("Cannot close storage", slog.Any("error", err))
		}
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case config.LogLevelInfo:
		level = slog.LevelInfo
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	case config.LogLevelDebug:
		level = slog.LevelDebug
	default:
		panic("unknown log level")
	}

	switch cfg.LogFormat {
	case config.LogFormatJSON:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	case config.LogFormatPretty:
		return slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
		}))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
}
