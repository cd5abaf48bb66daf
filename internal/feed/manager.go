package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/r3labs/sse/v2"
	"github.com/rs/zerolog"
)

// State of the feed connection.
type State int

const (
	Detached State = iota
	Subscribed
)

// SnapshotHandler receives each pushed snapshot: the entire current
// notification collection for the user, never a delta.
type SnapshotHandler func(snapshot domain.NotificationSnapshot)

// Subscription is a cancellable handle on one per-user channel.
// Unsubscribe is idempotent and must be called on every exit path; a leaked
// subscription causes duplicate counter updates.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	cancel  context.CancelFunc
	manager *Manager
	once    sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		s.manager.detach(s)
	})
}

// Manager owns the realtime notification feed connection. It moves between
// Detached (no authenticated user) and Subscribed (listening on one per-user
// channel). Any user change or logout tears down the old subscription before
// a new one is established; two simultaneous subscriptions for different
// users never coexist.
type Manager struct {
	log     zerolog.Logger
	baseURL string
	http    *http.Client

	newClient func(url string) sseClient

	m       sync.Mutex
	state   State
	userID  int64
	current *subscription
}

// sseClient is the part of the sse client the manager uses; swapped in tests.
type sseClient interface {
	SubscribeChanRawWithContext(ctx context.Context, ch chan *sse.Event) error
}

func NewManager(log logger.Logger, cfg domain.FeedConfig) *Manager {
	return &Manager{
		log:     log.With().Str("module", "feed").Logger(),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		newClient: func(url string) sseClient {
			return sse.NewClient(url)
		},
	}
}

// Subscribe attaches to the per-user channel. Entering Subscribed requires a
// non-zero user id. An existing subscription is torn down first.
func (m *Manager) Subscribe(userID int64, onSnapshot SnapshotHandler) (Subscription, error) {
	if userID == 0 {
		return nil, errors.New("cannot subscribe without a user id")
	}

	// tear down the old channel before establishing the new one
	m.Detach()

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{cancel: cancel, manager: m}

	client := m.newClient(m.channelURL(userID))
	events := make(chan *sse.Event)

	if err := client.SubscribeChanRawWithContext(ctx, events); err != nil {
		cancel()
		return nil, errors.Wrap(err, "could not subscribe to notification feed for user %d", userID)
	}

	go m.consume(ctx, events, onSnapshot)

	m.m.Lock()
	m.current = sub
	m.state = Subscribed
	m.userID = userID
	m.m.Unlock()

	m.log.Debug().Int64("user_id", userID).Msg("subscribed to notification feed")
	return sub, nil
}

// Detach tears down the current subscription, if any. Safe to call in any
// state and on every exit path.
func (m *Manager) Detach() {
	m.m.Lock()
	sub := m.current
	m.m.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.m.Lock()
	defer m.m.Unlock()
	return m.state
}

// MarkRead writes the read timestamp for one record within the per-user
// channel. It is a partial-field update addressed by record id.
func (m *Manager) MarkRead(ctx context.Context, userID int64, recordID string, readAt time.Time) error {
	body, err := json.Marshal(map[string]string{"read_at": readAt.UTC().Format(time.RFC3339)})
	if err != nil {
		return errors.Wrap(err, "could not encode read timestamp")
	}

	url := fmt.Sprintf("%s/%s", m.channelURL(userID), recordID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "could not build mark-read request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := m.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "mark-read request failed")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errors.New("mark-read rejected with status %d", res.StatusCode)
	}

	return nil
}

func (m *Manager) channelURL(userID int64) string {
	return fmt.Sprintf("%s/feeds/users/%d/notifications", m.baseURL, userID)
}

func (m *Manager) consume(ctx context.Context, events chan *sse.Event, onSnapshot SnapshotHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil || len(event.Data) == 0 {
				continue
			}

			snapshot, err := decodeSnapshot(event.Data)
			if err != nil {
				m.log.Error().Err(err).Msg("could not decode feed snapshot")
				continue
			}

			onSnapshot(snapshot)
		}
	}
}

// detach clears the manager state when the given subscription was current.
func (m *Manager) detach(sub *subscription) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.current == sub {
		m.current = nil
		m.state = Detached
		m.userID = 0
		m.log.Debug().Msg("detached from notification feed")
	}
}

// decodeSnapshot parses the wire payload: a mapping of record id to record.
func decodeSnapshot(data []byte) (domain.NotificationSnapshot, error) {
	var snapshot domain.NotificationSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}

	// backfill ids for payloads that omit them inside the record
	for id, record := range snapshot {
		if record.ID == "" {
			record.ID = id
			snapshot[id] = record
		}
	}

	return snapshot, nil
}
