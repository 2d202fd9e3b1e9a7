package common

import (
	"context"
	"log"
	"strings"

	"github.com/lomedigitalschool/kotiz-web/internal/models"
	"github.com/lomedigitalschool/kotiz-web/internal/notify"
	"github.com/lomedigitalschool/kotiz-web/internal/payment"
	"github.com/lomedigitalschool/kotiz-web/internal/remote"
	"github.com/lomedigitalschool/kotiz-web/internal/storage"
	"github.com/lomedigitalschool/kotiz-web/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

// Services bundles the wired subsystems a binary needs.
type Services struct {
	Slots      storage.SlotStore
	Remote     *remote.Client
	Store      *store.Store
	Dispatcher *notify.Dispatcher
	Methods    []payment.Method
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires durable storage, the remote client, the state
// store and the notification subscriber.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	slots, err := storage.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	remoteClient, err := remote.NewClient(cfg.Api, cfg.Store, slots)
	if err != nil {
		slots.Close()
		return nil, err
	}

	st := store.New(ctx, slots, remoteClient, cfg.Store)

	dispatcher := notify.NewDispatcher(cfg.Notify.Channels)
	st.Subscribe(notify.Subscriber(dispatcher))

	methods, err := payment.LoadMethodCatalog(cfg.Payment.MethodsFile)
	if err != nil {
		zap.L().Warn("Payment method catalog unavailable, using defaults",
			zap.String("file", cfg.Payment.MethodsFile),
			zap.Error(err))
		methods = payment.DefaultMethods()
	}

	return &Services{
		Slots:      slots,
		Remote:     remoteClient,
		Store:      st,
		Dispatcher: dispatcher,
		Methods:    methods,
	}, nil
}

func (cs *Services) Close() {
	if cs.Slots != nil {
		cs.Slots.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
