// cmd/web/main.go
//
// Newsletter service – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start the JSON logger (LOG_LEVEL, LOG_DIR) and install it globally.
//
//  2. Resolve settings: conf/base.yaml → conf/<APP_ENVIRONMENT>.yaml →
//     APP_* overrides.  Dial Vault first only if a `vault:` value exists.
//
//  3. Optionally open the GeoLite2 DB (GEOIP_DB) for request logging.
//
//  4. Open the Postgres pool (lazy when database.connect_lazy is set) and,
//     with -migrate, create the subscriptions table.
//
//  5. Wire repository → intake → handler → router and serve until SIGINT
//     or SIGTERM, then drain.
//
// Any failure before the listener is bound exits non-zero.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/newsletter/internal/config"
	"github.com/yanizio/newsletter/internal/database"
	"github.com/yanizio/newsletter/internal/logger"
	"github.com/yanizio/newsletter/internal/requestinfo"
	"github.com/yanizio/newsletter/internal/server"
	"github.com/yanizio/newsletter/internal/subscription"
	"github.com/yanizio/newsletter/internal/vault"
)

const serviceName = "newsletter"

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	migrate := flag.Bool("migrate", false, "create the subscriptions table before serving")
	flag.Parse()

	logOut, err := logger.New(logger.Options{
		Name:  serviceName,
		Level: os.Getenv("LOG_LEVEL"),
		Dir:   os.Getenv("LOG_DIR"),
		Tee:   os.Getenv("LOG_DIR") != "" && runningInTTY(),
	})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	logger.Install(logOut)
	defer func() { _ = logOut.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logOut, *migrate); err != nil {
		logOut.Fatal("newsletter stopped", zap.Error(err))
	}
}

func run(ctx context.Context, logOut *zap.Logger, migrate bool) error {
	//
	// ── 1.  Settings ────────────────────────────────────────────────────
	//
	var opts []config.Option
	if config.HasSecretRefs("") {
		vc, err := vault.New(logOut)
		if err != nil {
			return err
		}
		opts = append(opts, config.WithSecretSource(ctx, vc))
	}
	settings, err := config.Load(opts...)
	if err != nil {
		return err
	}

	//
	// ── 2.  Request enrichment ──────────────────────────────────────────
	//
	if path := os.Getenv("GEOIP_DB"); path != "" {
		if err := requestinfo.InitGeo(path); err != nil {
			logOut.Warn("geo lookup disabled", zap.Error(err))
		} else {
			defer requestinfo.CloseGeo()
		}
	}

	//
	// ── 3.  Database pool ───────────────────────────────────────────────
	//
	logOut.Info("connecting to database",
		zap.String("target", settings.Database.Target()),
		zap.Bool("lazy", settings.Database.ConnectLazy))

	dsn := settings.Database.ConnectionString()
	open := func() (*sqlx.DB, error) { return database.Open(ctx, dsn, database.DefaultOptions) }
	if settings.Database.ConnectLazy {
		open = func() (*sqlx.DB, error) { return database.OpenLazy(dsn, database.DefaultOptions) }
	}
	db, err := open()
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		logOut.Info("schema applied")
	}

	//
	// ── 4.  Intake pipeline and router ──────────────────────────────────
	//
	repo := subscription.NewRepository(db, subscription.WithRepositoryLogger(logOut))
	intake := subscription.NewIntake(repo, logOut)

	handler := server.NewRouter(server.Routes{
		Subscriptions: subscription.NewHandler(intake),
		Log:           logOut,
		HSTS:          settings.Environment == config.Production,
	})

	//
	// ── 5.  Listen and serve ────────────────────────────────────────────
	//
	ln, err := net.Listen("tcp", settings.Application.Address())
	if err != nil {
		return err
	}
	return server.Serve(ctx, server.New(handler), ln, logOut)
}
