package store

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/aevum/internal/api/grpc/alarm"
	"github.com/oshokin/aevum/internal/config"
	"github.com/oshokin/aevum/internal/logger"
	pb "github.com/oshokin/aevum/internal/pb/v1"
	repository "github.com/oshokin/aevum/internal/repository/alarms"
)

// Options controls the alarm store process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// Storage overrides the configured storage backend.
	Storage string
	// StatePath overrides the file or database path of the storage backend.
	StatePath string
	// LogLevel overrides the configured log level when specified.
	LogLevel string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarmd")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.Storage != "" {
		settings.Storage = opts.Storage
	}

	level, err := logger.ResolveLevel(opts.LogLevel, settings.LogLevel)
	if err != nil {
		return err
	}

	logger.SetLevel(level)

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo, err := repository.Open(ctx, settings, opts.StatePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	defer func() {
		if err := repo.Close(); err != nil {
			logger.ErrorKV(ctx, "Failed to close storage", "error", err)
		}
	}()

	svc, err := newService(ctx, repo, nil)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		svc.Close()

		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	return serve(ctx, svc, lis, settings.Storage)
}

// serve runs the gRPC server on lis until ctx is done.
func serve(ctx context.Context, svc *service, lis net.Listener, storage string) error {
	grpcServer := grpc.NewServer()
	pb.RegisterAlarmServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Alarm store listening",
		"listen_address", lis.Addr().String(),
		"storage", storage,
		"alarms", len(svc.Alarms()),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")

		// Ending the subscriptions first lets GracefulStop finish the streams.
		svc.Close()
		grpcServer.GracefulStop()

		return nil
	})

	err := g.Wait()

	logger.Info(ctx, "GRPC server stopped")

	return err //nolint:wrapcheck // Already wrapped inside the group.
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	host, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Loopback stays loopback; anything else binds on all interfaces.
	if ip := net.ParseIP(host); host == "localhost" || (ip != nil && ip.IsLoopback()) {
		return net.JoinHostPort(host, port), nil
	}

	return ":" + port, nil
}
