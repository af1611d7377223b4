package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"longevity-frame/internal/app"
	"longevity-frame/internal/config"
	"longevity-frame/internal/domain"
	"longevity-frame/internal/identity"
	"longevity-frame/internal/infra/memory"
	pgloader "longevity-frame/internal/infra/postgres"
	redisstore "longevity-frame/internal/infra/redis"
	"longevity-frame/internal/render"
	transport "longevity-frame/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the frame server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if *port != "" {
				cfg.Server.Port = *port
			}
			return runServer(cmd.Context(), cfg, logger)
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(domain.DefaultBank())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		loader = pgloader.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		banks = redisstore.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
	}

	var store app.ScoreStore
	switch cfg.Store.Backend {
	case config.BackendRedis:
		if redisClient == nil {
			return errors.New("score store backend redis requires redis.addr")
		}
		store = redisstore.NewScoreStore(redisClient, cfg.Store.Prefix)
	case config.BackendMemory:
		store = memory.NewScoreStore()
	default:
		return fmt.Errorf("unknown score store backend %q", cfg.Store.Backend)
	}

	scores := app.NewScoreService(store, banks, cfg.Bank.ID, app.NewLeaderboardHub())
	frames := app.NewFrameController(banks, cfg.Bank.ID, scores, log)
	verifier := identity.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if !verifier.Enabled() {
		log.Warn("auth.jwtSecret not set; every request is anonymous and no scores are saved")
	}

	handler := transport.NewRouter(transport.Deps{
		Frames:   frames,
		Scores:   scores,
		Renderer: render.NewRenderer(),
		Verifier: verifier,
		Config:   cfg,
		Log:      log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.Info("starting frame server",
			zap.String("addr", server.Addr),
			zap.String("baseURL", cfg.Frame.BaseURL),
			zap.String("store", cfg.Store.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
