package alarm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/aevum/internal/channel"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
	"github.com/oshokin/aevum/internal/logger"
	pb "github.com/oshokin/aevum/internal/pb/v1"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Add(ctx context.Context, actor *domain.Actor, alarm domain.Alarm) error
	Remove(ctx context.Context, actor *domain.Actor, id string) error
	// Subscribe returns the current alarms and a stream of every later event.
	// The stream ends when unsubscribe is called or the service shuts down.
	Subscribe(ctx context.Context, actor *domain.Actor) (
		snapshot []domain.Alarm,
		events *channel.Receiver[domain.Event],
		unsubscribe func(),
	)
}

// Server implements the AlarmService gRPC API.
type Server struct {
	pb.UnimplementedAlarmServiceServer

	// service provides the business logic for alarm operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Add schedules a new alarm.
func (s *Server) Add(ctx context.Context, req *pb.AddAlarmRequest) (*pb.MutationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.GetActor() == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	alarm := req.GetAlarm()
	if alarm.GetId() == "" {
		return nil, status.Error(codes.InvalidArgument, "alarm id is required")
	}

	if alarm.GetUnixTime() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "alarm time must be positive")
	}

	if err := s.service.Add(ctx, toDomainActor(req.GetActor()), ToDomainAlarm(alarm)); err != nil {
		return nil, toStatus(err)
	}

	return &pb.MutationResponse{}, nil
}

// Remove deletes an alarm.
func (s *Server) Remove(ctx context.Context, req *pb.RemoveAlarmRequest) (*pb.MutationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.GetActor() == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	if req.GetId() == "" {
		return nil, status.Error(codes.InvalidArgument, "alarm id is required")
	}

	if err := s.service.Remove(ctx, toDomainActor(req.GetActor()), req.GetId()); err != nil {
		return nil, toStatus(err)
	}

	return &pb.MutationResponse{}, nil
}

// Subscribe streams the current alarms followed by every change and ring.
func (s *Server) Subscribe(req *pb.SubscribeRequest, stream grpc.ServerStreamingServer[pb.AlarmEvent]) error {
	ctx := stream.Context()

	snapshot, events, unsubscribe := s.service.Subscribe(ctx, toDomainActor(req.GetActor()))
	defer unsubscribe()

	if err := stream.Send(ToProtoEvent(domain.AlarmsChanged{Alarms: snapshot})); err != nil {
		return err //nolint:wrapcheck // Stream errors already carry a status.
	}

	for {
		event, err := events.Recv(ctx)
		switch {
		case errors.Is(err, channel.ErrClosed):
			return status.Error(codes.Unavailable, "alarm store is shutting down")
		case err != nil:
			logger.DebugKV(ctx, "Subscriber left", "actor", toDomainActor(req.GetActor()))

			return status.FromContextError(err).Err()
		}

		if err := stream.Send(ToProtoEvent(event)); err != nil {
			return err //nolint:wrapcheck // Stream errors already carry a status.
		}
	}
}

// toStatus maps service errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, "unable to persist alarms")
	}
}

// toDomainActor converts a protobuf SystemActor to a domain Actor.
func toDomainActor(actor *pb.SystemActor) *domain.Actor {
	if actor == nil {
		return nil
	}

	return &domain.Actor{
		Hostname: actor.GetHostname(),
		Username: actor.GetUsername(),
	}
}

// ToProtoActor converts a domain Actor to its wire form.
func ToProtoActor(actor *domain.Actor) *pb.SystemActor {
	if actor == nil {
		return nil
	}

	return &pb.SystemActor{
		Hostname: actor.Hostname,
		Username: actor.Username,
	}
}

// ToDomainAlarm converts a wire alarm to the domain model.
func ToDomainAlarm(alarm *pb.Alarm) domain.Alarm {
	return domain.Alarm{
		ID:           alarm.GetId(),
		UnixTime:     alarm.GetUnixTime(),
		RingDuration: alarm.GetRingDuration(),
	}
}

// ToProtoAlarm converts a domain alarm to its wire form.
func ToProtoAlarm(alarm domain.Alarm) *pb.Alarm {
	return &pb.Alarm{
		Id:           alarm.ID,
		UnixTime:     alarm.UnixTime,
		RingDuration: alarm.RingDuration,
	}
}

// ToProtoEvent converts a domain event to its wire form.
func ToProtoEvent(event domain.Event) *pb.AlarmEvent {
	switch e := event.(type) {
	case domain.AlarmsChanged:
		alarms := make([]*pb.Alarm, 0, len(e.Alarms))
		for _, alarm := range e.Alarms {
			alarms = append(alarms, ToProtoAlarm(alarm))
		}

		return &pb.AlarmEvent{Type: pb.EventTypeAlarmsChanged, Alarms: alarms}
	case domain.Ring:
		return &pb.AlarmEvent{Type: pb.EventTypeRing, Alarm: ToProtoAlarm(e.Alarm)}
	default:
		return &pb.AlarmEvent{}
	}
}

// errUnknownEvent is returned for wire events of an unknown type.
var errUnknownEvent = errors.New("unknown alarm event type")

// ToDomainEvent converts a wire event to the domain model.
//
//nolint:ireturn // Event is a closed sum type.
func ToDomainEvent(event *pb.AlarmEvent) (domain.Event, error) {
	switch event.GetType() {
	case pb.EventTypeAlarmsChanged:
		alarms := make([]domain.Alarm, 0, len(event.GetAlarms()))
		for _, alarm := range event.GetAlarms() {
			alarms = append(alarms, ToDomainAlarm(alarm))
		}

		return domain.AlarmsChanged{Alarms: alarms}, nil
	case pb.EventTypeRing:
		return domain.Ring{Alarm: ToDomainAlarm(event.GetAlarm())}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownEvent, event.GetType())
	}
}
