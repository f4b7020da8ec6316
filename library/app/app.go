package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/my-little-library/library/config"
	"github.com/Astemirdum/my-little-library/library/internal/errs"
	"github.com/Astemirdum/my-little-library/library/internal/handler"
	"github.com/Astemirdum/my-little-library/library/internal/repository"
	"github.com/Astemirdum/my-little-library/library/internal/server"
	"github.com/Astemirdum/my-little-library/library/internal/service"
	"github.com/Astemirdum/my-little-library/library/migrations"
	"github.com/Astemirdum/my-little-library/pkg/cache"
	"github.com/Astemirdum/my-little-library/pkg/kafka"
	"github.com/Astemirdum/my-little-library/pkg/logger"
	md "github.com/Astemirdum/my-little-library/pkg/middleware"
	"github.com/Astemirdum/my-little-library/pkg/postgres"
	"github.com/Astemirdum/my-little-library/pkg/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrMissingSecret = errors.New("AUTH_SECRET environment variable is not set")
	// ErrEmailTaken is returned by RegisterUser for an existing email.
	ErrEmailTaken = errs.ErrConflict
)

// Deps holds the process-wide resources behind the service.
type Deps struct {
	Service *service.Service

	db      *postgres.LazyPool
	closers []func() error
}

func (d *Deps) Close(log *zap.Logger) {
	for _, closeFn := range d.closers {
		if err := closeFn(); err != nil {
			log.Warn("close", zap.Error(err))
		}
	}
	d.db.Close()
}

// Build wires storage, cache and events into a Service. Redis and Kafka are
// optional and skipped when unconfigured.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Deps, error) {
	if cfg.Database.DSN == "" {
		return nil, postgres.ErrMissingDSN
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.Database, migrations.MigrationFiles, "up"); err != nil {
			return nil, errors.Wrap(err, "migrate")
		}
	}
	d := &Deps{db: postgres.NewLazyPool(cfg.Database)}
	repo, err := repository.NewRepository(d.db, log)
	if err != nil {
		return nil, errors.Wrap(err, "repo")
	}

	c, closeCache, err := cache.New(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("listing cache disabled", zap.Error(err))
		c = cache.Nop{}
	} else {
		d.closers = append(d.closers, closeCache)
	}

	var events kafka.Publisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Warn("mutation events disabled", zap.Error(err))
		} else {
			events = kafka.NewPublisher(producer)
			d.closers = append(d.closers, producer.Close)
		}
	}

	d.Service = service.NewService(repo, c, events, log)
	return d, nil
}

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	if cfg.Auth.Secret == "" {
		log.Fatal("auth", zap.Error(ErrMissingSecret))
	}
	deps, err := Build(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("init", zap.Error(err))
	}

	sessions := session.NewManager(cfg.Auth.Secret,
		session.WithTTL(cfg.Auth.SessionTTL),
		session.WithSecureCookie(cfg.Auth.Production),
	)
	h := handler.New(deps.Service, sessions, md.GuardConfig{
		AllowAnonymousSignup: cfg.Auth.AllowAnonymousSignup,
	}, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ", zap.String("addr", srv.Addr()))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	deps.Close(log)
	log.Info("Graceful shutdown finished")
}
