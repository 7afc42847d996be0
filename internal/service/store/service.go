package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/oshokin/aevum/internal/channel"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
	"github.com/oshokin/aevum/internal/logger"
	repo "github.com/oshokin/aevum/internal/repository/alarms"
)

// service holds the pending alarms and drives their ring schedule.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// ctx carries the logger for timer-driven work.
	ctx context.Context //nolint:containedctx // Timer callbacks have no caller context.
	// repo handles persistent storage of the alarms.
	repo repo.Repository
	// now returns the current time.
	now func() time.Time

	// mu protects every field below.
	mu sync.Mutex
	// alarms are the pending alarms, ordered by domain.Sort.
	alarms []domain.Alarm
	// rung holds the ids of alarms whose Ring event was already sent.
	rung map[string]struct{}
	// subscribers receive every event, keyed by subscription id.
	subscribers map[uint64]*channel.Sender[domain.Event]
	// nextSubscriber is the id given to the next subscription.
	nextSubscriber uint64
	// timer fires at the next ring or expiry deadline.
	timer *time.Timer
	// closed is set by Close; later subscriptions end immediately.
	closed bool
}

// newService creates a service backed by the provided repository and loads
// the persisted alarms. A nil repository keeps everything in memory.
func newService(ctx context.Context, repository repo.Repository, now func() time.Time) (*service, error) {
	if now == nil {
		now = time.Now
	}

	s := &service{
		ctx:         context.WithoutCancel(ctx),
		repo:        repository,
		now:         now,
		rung:        make(map[string]struct{}),
		subscribers: make(map[uint64]*channel.Sender[domain.Event]),
	}

	if repository != nil {
		alarms, err := repository.Load(ctx)

		switch {
		case err == nil:
			s.alarms = slices.Clone(alarms)
		case errors.Is(err, repo.ErrNotFound):
			// Start empty.
		default:
			return nil, fmt.Errorf("load alarms: %w", err)
		}
	}

	domain.Sort(s.alarms)

	s.mu.Lock()
	s.tickLocked()
	s.mu.Unlock()

	return s, nil
}

// Add schedules a new alarm. Ids must be unique.
func (s *service) Add(ctx context.Context, actor *domain.Actor, alarm domain.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(alarm.ID) >= 0 {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, alarm.ID)
	}

	previous := s.alarms
	s.alarms = append(slices.Clone(previous), alarm)
	domain.Sort(s.alarms)

	if err := s.persistLocked(ctx); err != nil {
		s.alarms = previous

		return err
	}

	logger.InfoKV(ctx, "Alarm added", "id", alarm.ID, "time", alarm.Time(), "actor", actor)

	s.broadcastLocked(domain.AlarmsChanged{Alarms: s.alarms})
	s.tickLocked()

	return nil
}

// Remove deletes an alarm, silencing it if it is ringing.
func (s *service) Remove(ctx context.Context, actor *domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	previous := s.alarms
	s.alarms = slices.Delete(slices.Clone(previous), index, index+1)

	if err := s.persistLocked(ctx); err != nil {
		s.alarms = previous

		return err
	}

	delete(s.rung, id)

	logger.InfoKV(ctx, "Alarm removed", "id", id, "actor", actor)

	s.broadcastLocked(domain.AlarmsChanged{Alarms: s.alarms})
	s.tickLocked()

	return nil
}

// Subscribe registers a new event stream.
func (s *service) Subscribe(ctx context.Context, actor *domain.Actor) (
	[]domain.Alarm,
	*channel.Receiver[domain.Event],
	func(),
) {
	tx, rx := channel.New[domain.Event]()

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := slices.Clone(s.alarms)

	if s.closed {
		tx.Close()

		return snapshot, rx, func() { rx.Close() }
	}

	id := s.nextSubscriber
	s.nextSubscriber++
	s.subscribers[id] = tx

	logger.DebugKV(ctx, "Subscriber joined", "actor", actor, "subscribers", len(s.subscribers))

	unsubscribe := func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()

		tx.Close()
		rx.Close()
	}

	return snapshot, rx, unsubscribe
}

// Alarms returns a copy of the pending alarms.
func (s *service) Alarms() []domain.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.alarms)
}

// Close stops the ring timer and ends every subscription.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true

	if s.timer != nil {
		s.timer.Stop()
	}

	for id, tx := range s.subscribers {
		tx.Close()
		delete(s.subscribers, id)
	}
}

// tick runs when the timer fires.
func (s *service) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.tickLocked()
}

// tickLocked rings due alarms, drops expired ones and re-arms the timer.
// An alarm whose ring window passed entirely (for example while the daemon
// was down) is dropped without ringing.
func (s *service) tickLocked() {
	now := s.now()

	var (
		kept    = make([]domain.Alarm, 0, len(s.alarms))
		expired bool
	)

	for _, alarm := range s.alarms {
		_, rung := s.rung[alarm.ID]

		if !rung && !alarm.Time().After(now) && !alarm.End().Before(now) {
			s.rung[alarm.ID] = struct{}{}
			rung = true

			logger.InfoKV(s.ctx, "Alarm ringing", "id", alarm.ID)
			s.broadcastLocked(domain.Ring{Alarm: alarm})
		}

		if !alarm.End().After(now) {
			delete(s.rung, alarm.ID)

			expired = true

			if rung {
				logger.InfoKV(s.ctx, "Alarm finished ringing", "id", alarm.ID)
			} else {
				logger.WarnKV(s.ctx, "Dropping missed alarm", "id", alarm.ID, "time", alarm.Time())
			}

			continue
		}

		kept = append(kept, alarm)
	}

	if expired {
		s.alarms = kept

		if err := s.persistLocked(s.ctx); err != nil {
			logger.ErrorKV(s.ctx, "Failed to persist expired alarms", "error", err)
		}

		s.broadcastLocked(domain.AlarmsChanged{Alarms: s.alarms})
	}

	s.scheduleLocked(now)
}

// scheduleLocked arms the timer for the earliest pending deadline.
func (s *service) scheduleLocked(now time.Time) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	var (
		next  time.Time
		found bool
	)

	for _, alarm := range s.alarms {
		deadline := alarm.Time()
		if _, rung := s.rung[alarm.ID]; rung {
			deadline = alarm.End()
		}

		if !found || deadline.Before(next) {
			next, found = deadline, true
		}
	}

	if !found {
		return
	}

	s.timer = time.AfterFunc(max(next.Sub(now), 0), s.tick)
}

// persistLocked saves the current alarms.
func (s *service) persistLocked(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	if err := s.repo.Save(ctx, s.alarms); err != nil {
		logger.Errorf(ctx, "Failed to persist alarms: %v", err)

		return fmt.Errorf("persist alarms: %w", err)
	}

	return nil
}

// broadcastLocked delivers event to every subscriber, dropping the ones
// whose receiver went away.
func (s *service) broadcastLocked(event domain.Event) {
	for id, tx := range s.subscribers {
		if err := tx.Send(event.Clone()); err != nil {
			tx.Close()
			delete(s.subscribers, id)
		}
	}
}

// indexLocked returns the position of the alarm with id, or -1.
func (s *service) indexLocked(id string) int {
	return slices.IndexFunc(s.alarms, func(alarm domain.Alarm) bool {
		return alarm.ID == id
	})
}
