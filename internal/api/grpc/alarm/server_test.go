package alarm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/aevum/internal/channel"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
	pb "github.com/oshokin/aevum/internal/pb/v1"
)

// fakeService implements the alarm Service interface for unit testing the transport.
type fakeService struct {
	err     error
	added   []domain.Alarm
	removed []string
	actors  []*domain.Actor

	snapshot []domain.Alarm
	events   *channel.Sender[domain.Event]
	rx       *channel.Receiver[domain.Event]
	left     chan struct{}
}

func newFakeService() *fakeService {
	tx, rx := channel.New[domain.Event]()

	return &fakeService{events: tx, rx: rx, left: make(chan struct{})}
}

func (f *fakeService) Add(_ context.Context, actor *domain.Actor, alarm domain.Alarm) error {
	f.actors = append(f.actors, actor)
	f.added = append(f.added, alarm)

	return f.err
}

func (f *fakeService) Remove(_ context.Context, actor *domain.Actor, id string) error {
	f.actors = append(f.actors, actor)
	f.removed = append(f.removed, id)

	return f.err
}

func (f *fakeService) Subscribe(
	context.Context,
	*domain.Actor,
) ([]domain.Alarm, *channel.Receiver[domain.Event], func()) {
	return f.snapshot, f.rx, func() { close(f.left) }
}

var testActor = &pb.SystemActor{Hostname: "kitchen", Username: "alice"}

// TestServer_Validation ensures invalid requests return InvalidArgument errors.
func TestServer_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeService())
	ctx := t.Context()

	_, err := s.Add(ctx, nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Add(ctx, &pb.AddAlarmRequest{Alarm: &pb.Alarm{Id: "a1", UnixTime: 1}})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Add(ctx, &pb.AddAlarmRequest{Actor: testActor, Alarm: &pb.Alarm{UnixTime: 1}})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Add(ctx, &pb.AddAlarmRequest{Actor: testActor, Alarm: &pb.Alarm{Id: "a1"}})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Remove(ctx, nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Remove(ctx, &pb.RemoveAlarmRequest{Actor: testActor})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_AddRemove forwards valid mutations to the service.
func TestServer_AddRemove(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	s := NewServer(svc)

	_, err := s.Add(t.Context(), &pb.AddAlarmRequest{
		Actor: testActor,
		Alarm: &pb.Alarm{Id: "a1", UnixTime: 1_800_000_000, RingDuration: 900},
	})
	require.NoError(t, err)

	_, err = s.Remove(t.Context(), &pb.RemoveAlarmRequest{Actor: testActor, Id: "a1"})
	require.NoError(t, err)

	require.Equal(t, []domain.Alarm{{ID: "a1", UnixTime: 1_800_000_000, RingDuration: 900}}, svc.added)
	require.Equal(t, []string{"a1"}, svc.removed)
	require.Equal(t, "alice@kitchen", svc.actors[0].String())
}

// TestServer_ErrorCodes maps service errors onto status codes.
func TestServer_ErrorCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want codes.Code
	}{
		{domain.ErrAlreadyExists, codes.AlreadyExists},
		{domain.ErrNotFound, codes.NotFound},
		{errors.New("disk full"), codes.Internal},
	}

	for _, tt := range tests {
		svc := newFakeService()
		svc.err = tt.err
		s := NewServer(svc)

		_, err := s.Add(t.Context(), &pb.AddAlarmRequest{Actor: testActor, Alarm: &pb.Alarm{Id: "a1", UnixTime: 1}})
		require.Equal(t, tt.want, status.Code(err))

		_, err = s.Remove(t.Context(), &pb.RemoveAlarmRequest{Actor: testActor, Id: "a1"})
		require.Equal(t, tt.want, status.Code(err))
	}
}

// fakeStream collects sent events.
type fakeStream struct {
	grpc.ServerStream

	ctx  context.Context //nolint:containedctx // Test double.
	sent chan *pb.AlarmEvent
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func (f *fakeStream) Send(event *pb.AlarmEvent) error {
	f.sent <- event
	return nil
}

// TestServer_Subscribe sends the snapshot first and then events in order.
func TestServer_Subscribe(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.snapshot = []domain.Alarm{{ID: "a1", UnixTime: 10}}

	ctx, cancel := context.WithCancel(t.Context())
	stream := &fakeStream{ctx: ctx, sent: make(chan *pb.AlarmEvent, 8)}

	done := make(chan error, 1)

	go func() {
		done <- NewServer(svc).Subscribe(&pb.SubscribeRequest{Actor: testActor}, stream)
	}()

	require.NoError(t, svc.events.Send(domain.Ring{Alarm: domain.Alarm{ID: "a1", UnixTime: 10}}))
	require.NoError(t, svc.events.Send(domain.AlarmsChanged{}))

	first := <-stream.sent
	require.Equal(t, pb.EventTypeAlarmsChanged, first.GetType())
	require.Equal(t, "a1", first.GetAlarms()[0].GetId())

	second := <-stream.sent
	require.Equal(t, pb.EventTypeRing, second.GetType())
	require.Equal(t, "a1", second.GetAlarm().GetId())

	third := <-stream.sent
	require.Equal(t, pb.EventTypeAlarmsChanged, third.GetType())
	require.Empty(t, third.GetAlarms())

	cancel()

	select {
	case err := <-done:
		require.Equal(t, codes.Canceled, status.Code(err))
	case <-time.After(5 * time.Second):
		t.Fatal("subscribe did not return after cancellation")
	}

	<-svc.left
}

// TestServer_SubscribeShutdown ends the stream when the service closes it.
func TestServer_SubscribeShutdown(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	stream := &fakeStream{ctx: t.Context(), sent: make(chan *pb.AlarmEvent, 8)}

	svc.events.Close()

	err := NewServer(svc).Subscribe(&pb.SubscribeRequest{}, stream)
	require.Equal(t, codes.Unavailable, status.Code(err))
	require.Len(t, stream.sent, 1)
}

// TestEventConversion converts events both ways.
func TestEventConversion(t *testing.T) {
	t.Parallel()

	ring := domain.Ring{Alarm: domain.Alarm{ID: "a1", UnixTime: 5, RingDuration: 60}}

	converted, err := ToDomainEvent(ToProtoEvent(ring))
	require.NoError(t, err)
	require.Equal(t, ring, converted)

	changed := domain.AlarmsChanged{Alarms: []domain.Alarm{{ID: "a1"}, {ID: "a2"}}}

	converted, err = ToDomainEvent(ToProtoEvent(changed))
	require.NoError(t, err)
	require.Equal(t, changed, converted)

	_, err = ToDomainEvent(&pb.AlarmEvent{Type: "bogus"})
	require.ErrorIs(t, err, errUnknownEvent)
}
