package integration

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/aevum/internal/bridge"
	"github.com/oshokin/aevum/internal/channel"
	"github.com/oshokin/aevum/internal/config"
	domain "github.com/oshokin/aevum/internal/domain/alarm"
	"github.com/oshokin/aevum/internal/service/common"
	"github.com/oshokin/aevum/internal/service/store"
)

const waitFor = 10 * time.Second

var testActor = &domain.Actor{Hostname: "kitchen", Username: "pi"}

// freeAddress reserves a free loopback port.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// startStore runs the daemon until the returned stop function is called.
func startStore(t *testing.T, addr, storage, statePath string) (stop func()) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "aevum.yaml")

	settings := config.Default()
	settings.ServerAddress = addr
	settings.Storage = storage
	require.NoError(t, config.Save(cfgPath, settings))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- store.Run(ctx, &store.Options{
			ConfigPath: cfgPath,
			StatePath:  statePath,
		})
	}()

	stopped := false
	stop = func() {
		if stopped {
			return
		}

		stopped = true

		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(waitFor):
			t.Fatal("alarm store did not stop")
		}
	}

	t.Cleanup(stop)

	return stop
}

// dial connects to the daemon and waits until it accepts subscriptions.
func dial(t *testing.T, addr string) (*common.Client, *common.Subscriber) {
	t.Helper()

	client, err := common.Dial(t.Context(), addr,
		common.WithCallTimeout(3*time.Second),
		common.WithActor(testActor),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	var subscriber *common.Subscriber

	require.Eventually(t, func() bool {
		subscriber, err = client.Subscribe(t.Context())

		return err == nil
	}, waitFor, 50*time.Millisecond)

	t.Cleanup(func() { _ = subscriber.Close() })

	return client, subscriber
}

func next(t *testing.T, subscriber *common.Subscriber) domain.Event {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), waitFor)
	defer cancel()

	event, ok := subscriber.Next(ctx)
	require.True(t, ok, "subscription ended")

	return event
}

// TestStore_Lifecycle adds, rings, expires and removes alarms over gRPC.
func TestStore_Lifecycle(t *testing.T) {
	t.Parallel()

	for _, storage := range []string{config.StorageFile, config.StorageSQLite} {
		t.Run(storage, func(t *testing.T) {
			t.Parallel()

			addr := freeAddress(t)
			startStore(t, addr, storage, filepath.Join(t.TempDir(), "alarms"))

			client, subscriber := dial(t, addr)
			require.Empty(t, subscriber.Alarms())

			ctx := t.Context()

			later := domain.New("later", time.Now().Add(time.Hour), domain.DefaultRingDuration)
			require.NoError(t, client.Add(ctx, later))
			require.Equal(t, domain.AlarmsChanged{Alarms: []domain.Alarm{later}}, next(t, subscriber))

			err := client.Add(ctx, later)
			require.Equal(t, codes.AlreadyExists, status.Code(errors.Unwrap(err)))

			soon := domain.New("soon", time.Now().Add(2*time.Second), 1)
			require.NoError(t, client.Add(ctx, soon))
			require.Equal(t, domain.AlarmsChanged{Alarms: []domain.Alarm{soon, later}}, next(t, subscriber))

			require.Equal(t, domain.Ring{Alarm: soon}, next(t, subscriber))
			require.Equal(t, domain.AlarmsChanged{Alarms: []domain.Alarm{later}}, next(t, subscriber))

			err = client.Remove(ctx, "missing")
			require.Equal(t, codes.NotFound, status.Code(errors.Unwrap(err)))

			require.NoError(t, client.Remove(ctx, "later"))
			require.Equal(t, domain.AlarmsChanged{Alarms: []domain.Alarm{}}, next(t, subscriber))
		})
	}
}

// TestStore_PersistsAcrossRestarts restarts the daemon on the same state.
func TestStore_PersistsAcrossRestarts(t *testing.T) {
	t.Parallel()

	for _, storage := range []string{config.StorageFile, config.StorageSQLite} {
		t.Run(storage, func(t *testing.T) {
			t.Parallel()

			addr := freeAddress(t)
			statePath := filepath.Join(t.TempDir(), "alarms")
			stop := startStore(t, addr, storage, statePath)

			client, _ := dial(t, addr)

			wake := domain.New("wake", time.Now().Add(time.Hour), domain.DefaultRingDuration)
			require.NoError(t, client.Add(t.Context(), wake))

			stop()

			startStore(t, addr, storage, statePath)

			_, subscriber := dial(t, addr)
			require.Equal(t, []domain.Alarm{wake}, subscriber.Alarms())
		})
	}
}

// TestStore_ShutdownEndsBridge checks the client bridge closes its channel
// when the daemon goes away.
func TestStore_ShutdownEndsBridge(t *testing.T) {
	t.Parallel()

	addr := freeAddress(t)
	stop := startStore(t, addr, config.StorageFile, filepath.Join(t.TempDir(), "alarms.json"))

	client, _ := dial(t, addr)

	rx := bridge.Spawn(t.Context(), func(ctx context.Context) (bridge.Subscriber, error) {
		subscriber, err := client.Subscribe(ctx)
		if err != nil {
			return nil, err
		}

		return subscriber, nil
	})
	defer rx.Close()

	ctx, cancel := context.WithTimeout(t.Context(), waitFor)
	defer cancel()

	first, err := rx.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.AlarmsChanged{Alarms: []domain.Alarm{}}, first)

	stop()

	_, err = rx.Recv(ctx)
	require.ErrorIs(t, err, channel.ErrClosed)
}
