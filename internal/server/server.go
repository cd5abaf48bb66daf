package server

import (
	"context"
	"time"

	"github.com/gourmand-app/gourmand/internal/auth"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/notification"
	"github.com/gourmand-app/gourmand/internal/scheduler"
	"github.com/gourmand-app/gourmand/internal/update"
	"github.com/rs/zerolog"
)

type Server struct {
	log    zerolog.Logger
	config *domain.Config

	scheduler     scheduler.Service
	updateService *update.Service
	authService   auth.Service
	notifications notification.Service
}

func NewServer(log logger.Logger, config *domain.Config, scheduler scheduler.Service, updateSvc *update.Service, authSvc auth.Service, notificationSvc notification.Service) *Server {
	return &Server{
		log:           log.With().Str("module", "server").Logger(),
		config:        config,
		scheduler:     scheduler,
		updateService: updateSvc,
		authService:   authSvc,
		notifications: notificationSvc,
	}
}

func (s *Server) Start() error {
	// restore the persisted session before the bridge accepts requests so a
	// returning user never sees a logged-out flicker
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.authService.Restore(ctx); err != nil {
		s.log.Error().Err(err).Msg("could not restore persisted session")
	}

	go s.checkUpdates()

	// start cron scheduler
	s.scheduler.Start()

	return nil
}

func (s *Server) Shutdown() {
	s.log.Info().Msg("Shutting down server")

	// stop cron scheduler
	s.scheduler.Stop()

	// tear down the notification feed subscription
	s.notifications.Detach()
}

func (s *Server) checkUpdates() {
	if s.config.Updates.Enabled {
		time.Sleep(1 * time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.updateService.CheckUpdateAvailable(ctx); err != nil {
			s.log.Error().Err(err).Msg("initial update check failed")
		}
	}
}
