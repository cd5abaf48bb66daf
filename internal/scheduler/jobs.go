package scheduler

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gourmand-app/gourmand/internal/auth"
	"github.com/gourmand-app/gourmand/internal/update"
	"github.com/rs/zerolog"
)

// TopicUpdateAvailable carries an *update.Release when a newer build exists.
const TopicUpdateAvailable = "app:update"

type CheckUpdatesJob struct {
	Name      string
	Log       zerolog.Logger
	UpdateSvc *update.Service
	Bus       EventBus.Bus

	lastNotified string
}

func (j *CheckUpdatesJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	release, err := j.UpdateSvc.CheckUpdateAvailable(ctx)
	if err != nil {
		j.Log.Error().Err(err).Msg("could not check for new release")
		return
	}
	if release == nil {
		return
	}

	// nothing is persisted between runs, so only announce each version once
	// per process
	if release.TagName != j.lastNotified {
		j.Log.Info().Str("version", release.TagName).Msg("a new release is available")
		if j.Bus != nil {
			j.Bus.Publish(TopicUpdateAvailable, release)
		}
	}
	j.lastNotified = release.TagName
}

// SessionRevalidationJob periodically verifies the stored token against the
// backend. Trust in the token lives server-side; this job just surfaces a
// revocation without waiting for the next user action.
type SessionRevalidationJob struct {
	Name    string
	Log     zerolog.Logger
	AuthSvc auth.Service
}

func (j *SessionRevalidationJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := j.AuthSvc.Revalidate(ctx); err != nil {
		j.Log.Error().Err(err).Msg("session revalidation failed")
		return
	}
	j.Log.Trace().Msg("session revalidated")
}
