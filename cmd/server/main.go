package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/banko/internal/adapter/handler"
	"github.com/rl1809/banko/internal/adapter/notify"
	"github.com/rl1809/banko/internal/adapter/storage"
	"github.com/rl1809/banko/internal/config"
	"github.com/rl1809/banko/internal/core/service"
	"github.com/rl1809/banko/internal/logger"
	"github.com/rl1809/banko/internal/port"
)

// store is the persistence both the number log and the claim ledger live in.
type store interface {
	port.NumberRepository
	port.ClaimRepository
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize store
	numbers, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("store ready", zap.String("driver", cfg.Store.Driver))

	// Draw lock and sessions: Redis when configured, process-local otherwise
	var lock port.DrawLock
	var sessions port.SessionRepository
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, PoolSize: 20})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		redisAdapter := storage.NewRedisAdapter(rdb, cfg.SessionTTL)
		lock, sessions = redisAdapter, redisAdapter
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	} else {
		lock = service.NewLocalDrawLock()
		sessions = storage.NewMemorySessionStore(cfg.SessionTTL)
	}

	// Initialize services
	notifier := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.NotifyAddress,
	})
	draws := service.NewDrawService(numbers, lock, service.WithDrawLogger(log.Named("draw")))
	claims := service.NewClaimService(numbers, notifier, log.Named("claims"))
	gate := service.NewAccessGate(cfg.Admin.Username, cfg.Admin.Password)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterBankoServiceServer(grpcServer,
		handler.NewGRPCHandler(draws, claims, gate, sessions, log.Named("grpc")))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	go func() {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(draws, claims, gate, sessions, cfg.ClaimAllowAddr, log.Named("http"))
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store, func(), error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := sql.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping mysql: %w", err)
		}
		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return adapter, func() { db.Close() }, nil

	default:
		adapter, err := storage.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return adapter, func() { adapter.Close() }, nil
	}
}
