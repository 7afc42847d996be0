//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	api "github.com/oshokin/aevum/internal/api/grpc/alarm"
	"github.com/oshokin/aevum/internal/config"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
	pb "github.com/oshokin/aevum/internal/pb/v1"
)

// Client wraps the gRPC AlarmService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the alarm store.
	conn *grpc.ClientConn
	// api is the AlarmService client interface.
	api pb.AlarmServiceClient
	// actor is attached to every request for the store's audit log.
	actor *pb.SystemActor

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// dialOptions are appended to the transport defaults.
	dialOptions []grpc.DialOption
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithDialOptions appends gRPC dial options, for example a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// WithActor sets the actor reported with every request.
func WithActor(actor *domain.Actor) Option {
	return func(c *Client) {
		if actor != nil {
			c.actor = api.ToProtoActor(actor)
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
	// errNoSnapshot is returned when a subscription does not start with the alarm list.
	errNoSnapshot = errors.New("subscription did not start with a snapshot")
)

// Dial creates a gRPC client for the alarm store. The connection is
// established lazily on the first call.
// Note: this uses insecure transport credentials; the store is meant to
// listen on the loopback interface.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := append(
		[]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())},
		client.dialOptions...,
	)

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial alarm store: %w", err)
	}

	client.conn = conn
	client.api = pb.NewAlarmServiceClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Add schedules a new alarm.
func (c *Client) Add(ctx context.Context, alarm domain.Alarm) error {
	if c.actor == nil {
		return errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &pb.AddAlarmRequest{
		Actor: c.actor,
		Alarm: api.ToProtoAlarm(alarm),
	}

	if _, err := c.api.Add(callCtx, request); err != nil {
		return fmt.Errorf("add alarm: %w", err)
	}

	return nil
}

// Remove deletes an alarm.
func (c *Client) Remove(ctx context.Context, id string) error {
	if c.actor == nil {
		return errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.Remove(callCtx, &pb.RemoveAlarmRequest{Actor: c.actor, Id: id}); err != nil {
		return fmt.Errorf("remove alarm: %w", err)
	}

	return nil
}

// Subscribe opens an event stream and waits for the initial alarm list.
// The stream lives until ctx is done or the subscriber is closed.
func (c *Client) Subscribe(ctx context.Context) (*Subscriber, error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := c.api.Subscribe(ctx, &pb.SubscribeRequest{Actor: c.actor})
	if err != nil {
		cancel()

		return nil, fmt.Errorf("subscribe: %w", err)
	}

	first, err := stream.Recv()
	if err != nil {
		cancel()

		return nil, fmt.Errorf("receive alarm snapshot: %w", err)
	}

	event, err := api.ToDomainEvent(first)
	if err != nil {
		cancel()

		return nil, fmt.Errorf("decode alarm snapshot: %w", err)
	}

	snapshot, ok := event.(domain.AlarmsChanged)
	if !ok {
		cancel()

		return nil, errNoSnapshot
	}

	return &Subscriber{
		stream: stream,
		cancel: cancel,
		alarms: snapshot.Alarms,
	}, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
