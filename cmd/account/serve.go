package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	postgresRepo "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/postgres"
	redisRepo "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/redis"
	httptransport "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/password"
	appsvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/session"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/validate"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/health"
	lg "github.com/Miraines/MoonyAndStarry/account-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/server"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func NewServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the gRPC health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on start")
	return cmd
}

func serve(ctx context.Context, runMigrations bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zapLog, err := lg.New(effectiveLevel(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = zapLog.Sync() }()

	db, err := openDB(cfg)
	if err != nil {
		zapLog.Error("database unavailable", zap.Error(err))
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if runMigrations {
		if err := migrate.Up(sqlDB); err != nil {
			zapLog.Error("run migrations", zap.Error(err))
			return err
		}
	}

	redisCli, err := openRedis(ctx, cfg)
	if err != nil {
		zapLog.Error("redis unavailable", zap.Error(err))
		return err
	}
	defer redisCli.Close()

	userRepo := postgresRepo.NewPostgresUserRepo(db)
	cache := redisRepo.NewRedisSessionCache(redisCli)

	forgetTokens, err := jwt.NewForgetTokenUtil(cfg)
	if err != nil {
		return err
	}
	hasher := password.NewArgon2Hasher(cfg.PasswordPepper, password.DefaultParams)
	svc := appsvc.New(userRepo, cache, hasher, forgetTokens, cfg, validate.New(), zapLog.Named("service"))
	sessions := session.NewManager(cache, cfg)

	checker := health.NewChecker(map[string]health.Pinger{
		"postgres": userRepo,
		"redis":    cache,
	}, 2*time.Second, prometheus.DefaultRegisterer)

	gin.SetMode(gin.ReleaseMode)
	router := httptransport.NewRouter(cfg, httptransport.NewHandler(svc, sessions, zapLog.Named("http")), checker, zapLog)
	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.StartGRPCServer(gctx, cfg, checker, zapLog.Named("grpc"))
	})

	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddress), zap.Bool("tls", cfg.TLSEnabled()))
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
		return err
	}
	return nil
}
