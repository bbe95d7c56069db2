package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	auth "github.com/goliatone/go-auth-service"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("authd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := loadConfig()

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg))
	fmt.Println("============")

	ctx := context.Background()

	db, err := openDatabase(ctx, getenv("AUTH_DB_DSN", "file::memory:?cache=shared"))
	if err != nil {
		lgr.Error("unable to open database", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: getenv("AUTH_REDIS_ADDR", "localhost:6379"),
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		lgr.Warn("cache unreachable at startup, continuing", "error", err)
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	codec := auth.NewTokenCodec(cfg).WithLogger(lgr.GetLogger("auth:codec"))
	registry := auth.NewSessionRegistry(rdb, codec).WithLogger(lgr.GetLogger("auth:registry"))

	svc := auth.NewService(repo, registry, codec, cfg).
		WithLogger(lgr.GetLogger("auth:svc")).
		WithMailer(auth.NewLogMailer(lgr.GetLogger("auth:mail")))

	guard := auth.NewGuard(codec, registry, cfg).
		WithLogger(lgr.GetLogger("auth:guard"))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))
	})

	srv.Router().WithLogger(lgr.GetLogger("router"))

	authCtrl := auth.NewHTTPController(svc, guard, cfg).
		WithLogger(lgr.GetLogger("auth:ctrl"))
	authCtrl.RegisterRoutes(srv.Router().Group("/auth"))

	usersCtrl := auth.NewUsersController(svc, guard, cfg).
		WithLogger(lgr.GetLogger("users:ctrl"))
	usersCtrl.RegisterRoutes(srv.Router().Group("/users"))

	addr := getenv("AUTH_HTTP_ADDR", ":8080")
	srv.Serve(addr)

	WaitExitSignal()

	if err := rdb.Close(); err != nil {
		lgr.Error("cache close error", "error", err)
	}

	if err := db.Close(); err != nil {
		lgr.Error("database close error", "error", err)
	}
}

func loadConfig() *auth.SimpleConfig {
	return &auth.SimpleConfig{
		AccessSigningKey:  getenv("AUTH_ACCESS_SECRET", "dev-access-secret"),
		RefreshSigningKey: getenv("AUTH_REFRESH_SECRET", "dev-refresh-secret"),
		AccessTokenTTL:    getenvDuration("AUTH_ACCESS_TTL", 0),
		RefreshTokenTTL:   getenvDuration("AUTH_REFRESH_TTL", 0),
		Issuer:            getenv("AUTH_ISSUER", ""),
		BcryptCost:        getenvInt("AUTH_BCRYPT_COST", 0),
		Environment:       getenv("APP_ENV", "development"),
	}
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
