// Package testnats runs a throwaway NATS server for messaging tests.
package testnats

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const clientPort = "4222/tcp"

var (
	shared     *Server
	sharedOnce sync.Once
)

type Server struct {
	container testcontainers.Container
	URL       string
}

// SetupSharedNATS starts one server per test binary. Give each test its own
// subject prefix instead of running them in parallel.
func SetupSharedNATS(t *testing.T) *Server {
	t.Helper()

	sharedOnce.Do(func() {
		ctx := context.Background()
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "nats:2.10-alpine",
				ExposedPorts: []string{clientPort},
				WaitingFor:   wait.ForListeningPort(clientPort),
			},
			Started: true,
		})
		require.NoError(t, err)

		endpoint, err := container.PortEndpoint(ctx, clientPort, "")
		require.NoError(t, err)

		shared = &Server{container: container, URL: fmt.Sprintf("nats://%s", endpoint)}
	})
	require.NotNil(t, shared, "nats container failed to start earlier")

	return shared
}

// Subscribe opens a client connection and buffers every message on subject.
// Both are closed when the test ends.
func (s *Server) Subscribe(t *testing.T, subject string) <-chan *nats.Msg {
	t.Helper()

	conn, err := nats.Connect(s.URL)
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	msgs := make(chan *nats.Msg, 64)
	sub, err := conn.ChanSubscribe(subject, msgs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Unsubscribe() })
	require.NoError(t, conn.Flush())

	return msgs
}

func (s *Server) Terminate(t *testing.T) {
	t.Helper()

	if err := s.container.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate nats container: %s", err)
	}
}
