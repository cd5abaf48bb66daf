package update

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/pkg/errors"
	goversion "github.com/hashicorp/go-version"
	"github.com/rs/zerolog"
)

// Release is the latest published build as reported by the release endpoint.
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Service checks the release endpoint for a build newer than the running one.
type Service struct {
	log     zerolog.Logger
	config  *domain.Config
	version string
	http    *http.Client

	m      sync.Mutex
	latest *Release
}

func NewService(log logger.Logger, config *domain.Config, version string) *Service {
	return &Service{
		log:     log.With().Str("module", "update").Logger(),
		config:  config,
		version: version,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// CheckUpdateAvailable returns the latest release when it is newer than the
// running version, nil otherwise. Dev builds never report an update.
func (s *Service) CheckUpdateAvailable(ctx context.Context) (*Release, error) {
	if s.version == "dev" || s.version == "" {
		s.log.Trace().Msg("skipping update check for dev build")
		return nil, nil
	}

	release, err := s.fetchLatest(ctx)
	if err != nil {
		return nil, err
	}

	current, err := goversion.NewVersion(s.version)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse running version %q", s.version)
	}
	latest, err := goversion.NewVersion(release.TagName)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse release version %q", release.TagName)
	}

	if latest.LessThanOrEqual(current) {
		return nil, nil
	}

	s.m.Lock()
	s.latest = release
	s.m.Unlock()

	s.log.Debug().Str("current", s.version).Str("latest", release.TagName).Msg("newer release available")
	return release, nil
}

// Latest returns the most recent release found newer than the running
// version, nil when up to date.
func (s *Service) Latest() *Release {
	s.m.Lock()
	defer s.m.Unlock()
	return s.latest
}

func (s *Service) fetchLatest(ctx context.Context) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.Updates.Endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build release request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch latest release")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.New("release endpoint returned status %d", res.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(res.Body).Decode(&release); err != nil {
		return nil, errors.Wrap(err, "could not decode release payload")
	}
	return &release, nil
}
