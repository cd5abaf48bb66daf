package scheduler

import (
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gourmand-app/gourmand/internal/auth"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/update"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Service interface {
	Start()
	Stop()
	// AddJob adds a job that runs periodically at the given interval.
	AddJob(job cron.Job, interval time.Duration, identifier string) (int, error)
	// AddJobWithSpec adds a job using a cron spec string (e.g., "0 * * * *").
	AddJobWithSpec(job cron.Job, spec string, identifier string) (int, error)
	RemoveJobByIdentifier(id string) error
	GetNextRun(id string) (time.Time, error)
}

type service struct {
	log       zerolog.Logger
	config    *domain.Config
	updateSvc *update.Service
	authSvc   auth.Service
	bus       EventBus.Bus

	cron *cron.Cron
	jobs map[string]cron.EntryID
	m    sync.RWMutex
}

func NewService(log logger.Logger, config *domain.Config, updateSvc *update.Service, authSvc auth.Service, bus EventBus.Bus) Service {
	return &service{
		log:       log.With().Str("module", "scheduler").Logger(),
		config:    config,
		updateSvc: updateSvc,
		authSvc:   authSvc,
		bus:       bus,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
		)),
		jobs: map[string]cron.EntryID{},
	}
}

func (s *service) Start() {
	s.log.Info().Msg("starting scheduler")
	s.cron.Start()
	go s.addAppJobs()
}

func (s *service) addAppJobs() {
	time.Sleep(5 * time.Second)

	if s.config.Updates.Enabled {
		checkUpdates := &CheckUpdatesJob{
			Name:      "app-check-updates",
			Log:       s.log.With().Str("job", "app-check-updates").Logger(),
			UpdateSvc: s.updateSvc,
			Bus:       s.bus,
		}

		if _, err := s.AddJob(checkUpdates, 2*time.Hour, "app-check-updates"); err != nil {
			s.log.Error().Err(err).Msg("could not add update check job")
		}
	} else {
		s.log.Info().Msg("update checking is disabled")
	}

	if s.config.Revalidation.Enabled {
		revalidate := &SessionRevalidationJob{
			Name:    "session-revalidation",
			Log:     s.log.With().Str("job", "session-revalidation").Logger(),
			AuthSvc: s.authSvc,
		}

		spec := s.config.Revalidation.Schedule
		if spec == "" {
			spec = "0 * * * *"
		}

		if _, err := s.AddJobWithSpec(revalidate, spec, "session-revalidation"); err != nil {
			s.log.Error().Err(err).Str("spec", spec).Msg("could not add session revalidation job")
		}
	}
}

func (s *service) Stop() {
	s.log.Info().Msg("stopping scheduler")
	s.cron.Stop()
}

func (s *service) AddJob(job cron.Job, interval time.Duration, identifier string) (int, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if _, exists := s.jobs[identifier]; exists {
		return 0, errors.New("job %q already exists", identifier)
	}

	entryID, err := s.cron.AddJob("@every "+interval.String(), cron.NewChain(
		cron.SkipIfStillRunning(cron.DefaultLogger)).Then(job))
	if err != nil {
		return 0, errors.Wrap(err, "could not add job %q", identifier)
	}

	s.log.Debug().Str("identifier", identifier).Dur("interval", interval).Msg("scheduled job added")
	s.jobs[identifier] = entryID
	return int(entryID), nil
}

func (s *service) AddJobWithSpec(job cron.Job, spec string, identifier string) (int, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if _, exists := s.jobs[identifier]; exists {
		return 0, errors.New("job %q already exists", identifier)
	}

	entryID, err := s.cron.AddJob(spec, cron.NewChain(
		cron.SkipIfStillRunning(cron.DefaultLogger)).Then(job))
	if err != nil {
		return 0, errors.Wrap(err, "could not add job %q with spec %q", identifier, spec)
	}

	s.log.Debug().Str("identifier", identifier).Str("spec", spec).Msg("scheduled job added")
	s.jobs[identifier] = entryID
	return int(entryID), nil
}

func (s *service) RemoveJobByIdentifier(id string) error {
	s.m.Lock()
	defer s.m.Unlock()

	entryID, ok := s.jobs[id]
	if !ok {
		return nil
	}

	s.log.Debug().Str("identifier", id).Msg("removing scheduled job")
	s.cron.Remove(entryID)
	delete(s.jobs, id)
	return nil
}

func (s *service) GetNextRun(id string) (time.Time, error) {
	entry := s.getEntryById(id)
	if !entry.Valid() {
		return time.Time{}, nil
	}
	return entry.Next, nil
}

func (s *service) getEntryById(id string) cron.Entry {
	s.m.Lock()
	defer s.m.Unlock()

	entryID, ok := s.jobs[id]
	if !ok {
		return cron.Entry{}
	}
	return s.cron.Entry(entryID)
}
