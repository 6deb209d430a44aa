package testnats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedContainer *NATSContainer
	sharedOnce      sync.Once
)

type NATSContainer struct {
	Container testcontainers.Container
	URL       string
}

// SetupSharedNATS starts one NATS server per test binary. Subjects are
// shared, so tests should use a subject of their own.
func SetupSharedNATS(t *testing.T) *NATSContainer {
	t.Helper()

	sharedOnce.Do(func() {
		ctx := context.Background()

		natsContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "nats:2.10-alpine",
				ExposedPorts: []string{"4222/tcp"},
				WaitingFor:   wait.ForLog("Server is ready"),
			},
			Started: true,
		})
		require.NoError(t, err)

		endpoint, err := natsContainer.PortEndpoint(ctx, "4222/tcp", "nats")
		require.NoError(t, err)

		sharedContainer = &NATSContainer{
			Container: natsContainer,
			URL:       endpoint,
		}
	})

	require.NotNil(t, sharedContainer, "nats container failed to start")
	return sharedContainer
}

func (nc *NATSContainer) Cleanup(t *testing.T) {
	t.Helper()

	if nc.Container != nil {
		if err := nc.Container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
}

// Subscribe listens on subject until the test ends. The subscription is
// flushed before returning, so messages published afterwards are delivered.
func (nc *NATSContainer) Subscribe(t *testing.T, subject string) <-chan *nats.Msg {
	t.Helper()

	conn, err := nats.Connect(nc.URL, nats.Name("testnats-"+t.Name()))
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	msgs := make(chan *nats.Msg, 16)
	_, err = conn.ChanSubscribe(subject, msgs)
	require.NoError(t, err)
	require.NoError(t, conn.Flush())

	return msgs
}

// Next waits for one message on msgs or fails the test after timeout.
func Next(t *testing.T, msgs <-chan *nats.Msg, timeout time.Duration) *nats.Msg {
	t.Helper()

	select {
	case msg := <-msgs:
		return msg
	case <-time.After(timeout):
		t.Fatalf("no message received within %s", timeout)
		return nil
	}
}
