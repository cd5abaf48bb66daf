package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/gourmand-app/gourmand/internal/address"
	"github.com/gourmand-app/gourmand/internal/auth"
	"github.com/gourmand-app/gourmand/internal/basket"
	"github.com/gourmand-app/gourmand/internal/catalog"
	"github.com/gourmand-app/gourmand/internal/checkout"
	"github.com/gourmand-app/gourmand/internal/config"
	"github.com/gourmand-app/gourmand/internal/credentials"
	"github.com/gourmand-app/gourmand/internal/events"
	"github.com/gourmand-app/gourmand/internal/feed"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/http"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/notification"
	"github.com/gourmand-app/gourmand/internal/order"
	"github.com/gourmand-app/gourmand/internal/scheduler"
	"github.com/gourmand-app/gourmand/internal/server"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/internal/update"
	"github.com/gourmand-app/gourmand/internal/wishlist"
	"github.com/r3labs/sse/v2"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	var configPath string
	pflag.StringVar(&configPath, "config", "", "path to configuration file")
	pflag.Parse()

	// read config
	cfg := config.New(configPath, version)

	// init new logger
	log := logger.New(cfg.Config)

	// init dynamic config
	cfg.DynamicReload(log)

	// setup server-sent-events
	serverEvents := sse.New()
	serverEvents.CreateStreamWithOpts("logs", sse.StreamOpts{MaxEntries: 1000, AutoReplay: true})

	// shell streams replay the last event so a reconnecting shell catches up
	serverEvents.CreateStreamWithOpts(events.StreamBadges, sse.StreamOpts{MaxEntries: 1, AutoReplay: true})
	serverEvents.CreateStreamWithOpts(events.StreamUser, sse.StreamOpts{MaxEntries: 1, AutoReplay: true})
	serverEvents.CreateStreamWithOpts(events.StreamUpdate, sse.StreamOpts{MaxEntries: 1, AutoReplay: true})

	// register SSE writer
	log.RegisterSSEWriter(serverEvents)

	// setup internal eventbus
	bus := EventBus.New()

	// open the credential store
	credRepo, err := credentials.NewRepo(log, cfg.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open credential store")
	}

	log.Info().Msgf("Starting Gourmand")
	log.Info().Msgf("Version: %s", version)
	log.Info().Msgf("Commit: %s", commit)
	log.Info().Msgf("Build date: %s", date)
	log.Info().Msgf("Log-level: %s", cfg.Config.Logging.Level)
	log.Info().Msgf("Storefront API: %s", cfg.Config.API.BaseURL)

	// setup services
	var (
		credService  = credentials.NewService(log, credRepo)
		sessionStore = session.New(log, bus)
		api          = gateway.New(log, cfg.Config.API)
		feedManager  = feed.NewManager(log, cfg.Config.Feed)

		notificationService = notification.NewService(log, feedManager, sessionStore)
		authService         = auth.NewService(log, api, sessionStore, credService, notificationService)
		updateService       = update.NewService(log, cfg.Config, version)
		schedulingService   = scheduler.NewService(log, cfg.Config, updateService, authService, bus)
	)

	// setup screen controllers
	var (
		catalogController  = catalog.NewController(log, api)
		basketController   = basket.NewController(log, api, sessionStore, credService)
		wishlistController = wishlist.NewController(log, api, sessionStore, credService)
		addressController  = address.NewController(log, api, sessionStore)
		orderController    = order.NewController(log, api, sessionStore, credService)
		checkoutController = checkout.NewController(log, api, sessionStore, credService)
	)

	// register event subscribers
	events.NewSubscribers(log, bus, serverEvents)

	srv := server.NewServer(log, cfg.Config, schedulingService, updateService, authService, notificationService)
	if err := srv.Start(); err != nil {
		log.Fatal().Stack().Err(err).Msg("could not start server")
		return
	}

	errorChannel := make(chan error)

	go func() {
		httpServer := http.NewServer(
			log,
			cfg,
			serverEvents,
			version,
			commit,
			date,
			authService,
			sessionStore,
			credRepo,
			updateService,
			notificationService,
			catalogController,
			basketController,
			wishlistController,
			addressController,
			orderController,
			checkoutController,
		)
		errorChannel <- httpServer.Open()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	for sig := range sigCh {
		switch sig {
		case syscall.SIGHUP:
			log.Log().Msg("shutting down server sighup")
			srv.Shutdown()
			if err := credRepo.Close(); err != nil {
				log.Error().Stack().Err(err).Msg("could not close credential store")
			}
			os.Exit(1)
		case syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM:
			log.Info().Msg("Shutting down server...")
			srv.Shutdown()
			if err := credRepo.Close(); err != nil {
				log.Error().Stack().Err(err).Msg("could not close credential store")
			}
			os.Exit(0)
		}
	}
}
