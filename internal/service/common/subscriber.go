//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	api "github.com/oshokin/aevum/internal/api/grpc/alarm"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
	"github.com/oshokin/aevum/internal/logger"
	pb "github.com/oshokin/aevum/internal/pb/v1"
)

// Subscriber is an open alarm store event stream.
type Subscriber struct {
	stream grpc.ServerStreamingClient[pb.AlarmEvent]
	cancel context.CancelFunc
	alarms []domain.Alarm
}

// Alarms returns the alarm list received when the stream opened.
func (s *Subscriber) Alarms() []domain.Alarm {
	return s.alarms
}

// Next blocks for the next event. It returns false once the stream ended;
// the reason is logged.
//
//nolint:ireturn // Event is a closed sum type.
func (s *Subscriber) Next(ctx context.Context) (domain.Event, bool) {
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()

	for {
		message, err := s.stream.Recv()

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			logger.Info(ctx, "Alarm store closed the subscription")

			return nil, false
		case status.Code(err) == codes.Canceled:
			return nil, false
		default:
			logger.ErrorKV(ctx, "Alarm subscription failed", "error", err)

			return nil, false
		}

		event, err := api.ToDomainEvent(message)
		if err != nil {
			logger.WarnKV(ctx, "Skipping alarm event", "error", err)
			continue
		}

		return event, true
	}
}

// Close ends the stream.
func (s *Subscriber) Close() error {
	s.cancel()

	return nil
}
