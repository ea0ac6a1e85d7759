package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/catalogue-service/catalogue/config"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/events"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/handler"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/image"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/repository"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/server"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/service"
	"github.com/Astemirdum/catalogue-service/catalogue/migrations"
	"github.com/Astemirdum/catalogue-service/pkg/circuit_breaker"
	"github.com/Astemirdum/catalogue-service/pkg/kafka"
	"github.com/Astemirdum/catalogue-service/pkg/logger"
	"github.com/Astemirdum/catalogue-service/pkg/postgres"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "catalogue")
	defer log.Sync() //nolint:errcheck

	var (
		repo    repository.Repository
		closers []func()
	)
	switch cfg.Storage {
	case config.StorageMemory:
		log.Info("storage: memory")
		repo = repository.NewMemoryRepository(log)
	case "", config.StoragePostgres:
		db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			log.Fatal("db init", zap.Error(err))
		}
		closers = append(closers, db.Close)
		if repo, err = repository.NewRepository(db, log); err != nil {
			log.Fatal("repo", zap.Error(err))
		}
	default:
		log.Fatal("unknown storage", zap.String("storage", cfg.Storage))
	}

	images, err := image.NewStore(cfg.Image.Dir, image.Options{
		MaxWidth:  cfg.Image.MaxWidth,
		MaxHeight: cfg.Image.MaxHeight,
		Quality:   cfg.Image.Quality,
	}, log)
	if err != nil {
		log.Fatal("image store", zap.Error(err))
	}

	pub := events.NewNoop()
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		closers = append(closers, func() {
			if err := producer.Close(); err != nil {
				log.Error("producer close", zap.Error(err))
			}
		})
		cb := circuit_breaker.New(circuit_breaker.Config{
			RecordLength:     20,
			Timeout:          10 * time.Second,
			Percentile:       0.5,
			RecoveryRequests: 3,
		})
		pub = events.NewKafkaPublisher(producer, cfg.Kafka.Topic, cb)
	}

	svc := service.NewService(repo, images, pub, log,
		service.WithNaming(image.ParseNaming(cfg.Image.Naming)))

	h := handler.New(svc, svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter(handler.RouterConfig{
		ImageDir:  images.Dir(),
		JWTSecret: cfg.Auth.JWTSecret,
		BodyLimit: cfg.Server.BodyLimit,
	}))
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
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
	for _, closeFn := range closers {
		closeFn()
	}
	log.Info("Graceful shutdown finished")
}
