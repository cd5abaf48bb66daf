package events

import (
	"encoding/json"

	"github.com/asaskevich/EventBus"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/scheduler"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/internal/update"
	"github.com/r3labs/sse/v2"
	"github.com/rs/zerolog"
)

// SSE stream names consumed by the shell on /api/events.
const (
	StreamBadges = "badges"
	StreamUser   = "user"
	StreamUpdate = "update"
)

// Subscriber bridges the in-process event bus to the shell-facing SSE
// streams. The shell never talks to the bus directly; everything it observes
// flows through here.
type Subscriber struct {
	log zerolog.Logger
	bus EventBus.Bus
	sse logger.SSEPublisher
}

func NewSubscribers(log logger.Logger, bus EventBus.Bus, ssePublisher logger.SSEPublisher) *Subscriber {
	s := &Subscriber{
		log: log.With().Str("module", "events").Logger(),
		bus: bus,
		sse: ssePublisher,
	}
	s.register()
	return s
}

func (s *Subscriber) register() {
	if err := s.bus.Subscribe(session.TopicBadges, s.forwardBadges); err != nil {
		s.log.Error().Err(err).Str("topic", session.TopicBadges).Msg("could not subscribe")
	}
	if err := s.bus.Subscribe(session.TopicUser, s.forwardUser); err != nil {
		s.log.Error().Err(err).Str("topic", session.TopicUser).Msg("could not subscribe")
	}
	if err := s.bus.Subscribe(scheduler.TopicUpdateAvailable, s.forwardUpdate); err != nil {
		s.log.Error().Err(err).Str("topic", scheduler.TopicUpdateAvailable).Msg("could not subscribe")
	}
}

func (s *Subscriber) forwardBadges(badges session.Badges) {
	s.publish(StreamBadges, badges)
}

func (s *Subscriber) forwardUser(user *domain.UserProfile) {
	// a nil user (logout) is forwarded as JSON null so the shell clears its
	// account view
	s.publish(StreamUser, user)
}

func (s *Subscriber) forwardUpdate(release *update.Release) {
	s.publish(StreamUpdate, release)
}

func (s *Subscriber) publish(stream string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("stream", stream).Msg("could not encode event")
		return
	}

	s.log.Debug().Str("stream", stream).Msg("forwarding event to shell")
	s.sse.Publish(stream, &sse.Event{Data: data})
}
