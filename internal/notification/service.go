package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/feed"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrUnknownRecord is returned when marking a record the service never saw.
const ErrUnknownRecord = errors.Sentinel("unknown notification record")

// feedManager is the part of the feed the service drives.
type feedManager interface {
	Subscribe(userID int64, onSnapshot feed.SnapshotHandler) (feed.Subscription, error)
	Detach()
	MarkRead(ctx context.Context, userID int64, recordID string, readAt time.Time) error
}

type Service interface {
	// Attach subscribes to the authenticated user's channel. A previous
	// subscription is torn down first.
	Attach(userID int64) error
	// Detach tears down the subscription. Idempotent; called on every exit
	// path (logout, user change, shutdown).
	Detach()
	// ApplySnapshot replaces the local list wholesale with one pushed
	// snapshot and recomputes the unread counter.
	ApplySnapshot(snapshot domain.NotificationSnapshot)
	// List returns the local list, newest first.
	List() []domain.NotificationRecord
	// UnreadCount returns the current unread counter.
	UnreadCount() int
	// MarkRead sets the read timestamp on one record. Repeated calls for the
	// same record decrement the unread counter at most once.
	MarkRead(ctx context.Context, recordID string) error
}

type service struct {
	log      zerolog.Logger
	feed     feedManager
	sessions *session.Store

	m       sync.Mutex
	userID  int64
	records []domain.NotificationRecord
	unread  int
}

func NewService(log logger.Logger, feedMgr feedManager, sessions *session.Store) Service {
	return &service{
		log:      log.With().Str("module", "notification").Logger(),
		feed:     feedMgr,
		sessions: sessions,
	}
}

func (s *service) Attach(userID int64) error {
	s.m.Lock()
	s.userID = userID
	s.m.Unlock()

	if _, err := s.feed.Subscribe(userID, s.ApplySnapshot); err != nil {
		return errors.Wrap(err, "could not attach notification feed")
	}
	return nil
}

func (s *service) Detach() {
	s.feed.Detach()

	s.m.Lock()
	s.userID = 0
	s.records = nil
	s.unread = 0
	s.m.Unlock()
}

func (s *service) ApplySnapshot(snapshot domain.NotificationSnapshot) {
	records := make([]domain.NotificationRecord, 0, len(snapshot))
	for _, record := range snapshot {
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	unread := 0
	for _, record := range records {
		if record.Unread() {
			unread++
		}
	}

	s.m.Lock()
	s.records = records
	s.unread = unread
	s.m.Unlock()

	s.log.Debug().Int("records", len(records)).Int("unread", unread).Msg("notification snapshot applied")
	s.sessions.SetNotifications(unread)
}

func (s *service) List() []domain.NotificationRecord {
	s.m.Lock()
	defer s.m.Unlock()

	out := make([]domain.NotificationRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *service) UnreadCount() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.unread
}

func (s *service) MarkRead(ctx context.Context, recordID string) error {
	s.m.Lock()
	userID := s.userID
	idx := -1
	for i := range s.records {
		if s.records[i].ID == recordID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.m.Unlock()
		return ErrUnknownRecord
	}
	if !s.records[idx].Unread() {
		// already read: repeated taps are no-ops, never a double decrement
		s.m.Unlock()
		return nil
	}
	s.m.Unlock()

	readAt := time.Now()
	if err := s.feed.MarkRead(ctx, userID, recordID, readAt); err != nil {
		return errors.Wrap(err, "could not mark notification %s read", recordID)
	}

	// update the one record in place, no full re-fetch
	s.m.Lock()
	unread := s.unread
	for i := range s.records {
		if s.records[i].ID == recordID && s.records[i].Unread() {
			at := readAt
			s.records[i].ReadAt = &at
			unread--
			s.unread = unread
			break
		}
	}
	s.m.Unlock()

	s.sessions.SetNotifications(unread)
	return nil
}
