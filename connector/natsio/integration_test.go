package natsio

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/c360/streamkit/config"
	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/stream"
)

// NATSIntegrationSuite runs the connector against a real JetStream
// server in a container. One server is shared by all tests; each test
// provisions its own stream.
type NATSIntegrationSuite struct {
	suite.Suite
	container testcontainers.Container
	url       string
	ctx       context.Context
	cancel    context.CancelFunc
}

func (s *NATSIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "nats:2.11.7-alpine",
		ExposedPorts: []string{"4222/tcp", "8222/tcp"},
		Cmd:          []string{"--port", "4222", "--http_port", "8222", "--js"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("4222/tcp"),
			wait.ForHTTP("/").WithPort("8222/tcp").WithStartupTimeout(30*time.Second),
		),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(ctx, "4222")
	s.Require().NoError(err)
	s.url = fmt.Sprintf("nats://%s:%s", host, port.Port())
}

func (s *NATSIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *NATSIntegrationSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 60*time.Second)
}

func (s *NATSIntegrationSuite) TearDownTest() {
	s.cancel()
}

// createStream provisions a JetStream stream through a throwaway admin
// connection.
func (s *NATSIntegrationSuite) createStream(name, subjects string) jetstream.JetStream {
	nc, err := nats.Connect(s.url)
	s.Require().NoError(err)
	s.T().Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	s.Require().NoError(err)
	_, err = js.CreateStream(s.ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{subjects},
	})
	s.Require().NoError(err)
	return js
}

func (s *NATSIntegrationSuite) TestRoundTripPublishConsume() {
	s.createStream("EVENTS", "events.>")

	cfg := config.NATSConfig{
		URLs:      []string{s.url},
		Stream:    "EVENTS",
		Subject:   "events.test",
		Durable:   "roundtrip",
		FetchWait: 500 * time.Millisecond,
		Retry:     config.RetryConfig{MaxRetries: 3},
	}

	pub, err := NewPublisher(cfg)
	s.Require().NoError(err)
	s.Require().NoError(pub.Connect(s.ctx))
	s.T().Cleanup(func() { _ = pub.Close() })

	const total = 40
	for i := range total {
		s.Require().NoError(pub.Publish(s.ctx, "events.test", fmt.Appendf(nil, "payload-%d", i)))
	}

	src, err := NewSource(cfg)
	s.Require().NoError(err)
	s.Require().NoError(src.Connect(s.ctx))

	seen := make(map[string]bool, total)
	err = src.Stream().Limit(total).ForEach(func(m Msg) {
		seen[string(m.Data())] = true
		s.NoError(m.Ack())
	})
	s.Require().NoError(err)
	s.Require().NoError(src.Close())
	s.NoError(src.Err())

	s.Require().Len(seen, total)
	for i := range total {
		s.True(seen[fmt.Sprintf("payload-%d", i)], "payload-%d delivered", i)
	}
}

func (s *NATSIntegrationSuite) TestPublishStreamDeliversAll() {
	js := s.createStream("NUMBERS", "numbers.>")

	pub, err := NewPublisher(config.NATSConfig{
		URLs:  []string{s.url},
		Retry: config.RetryConfig{MaxRetries: 3},
	}, WithPublishWorkers(4), WithPublishQueue(32))
	s.Require().NoError(err)
	s.Require().NoError(pub.Connect(s.ctx))
	s.T().Cleanup(func() { _ = pub.Close() })

	const total = 100
	err = PublishStream(s.ctx, stream.RangeStream(0, total), pub, "numbers.all",
		func(v int64) ([]byte, error) {
			return fmt.Appendf(nil, "%d", v), nil
		})
	s.Require().NoError(err)

	st, err := js.Stream(s.ctx, "NUMBERS")
	s.Require().NoError(err)
	info, err := st.Info(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(total, info.State.Msgs)
}

func (s *NATSIntegrationSuite) TestSourceDrainsAfterServerStreamDeleted() {
	js := s.createStream("DOOMED", "doomed.>")

	cfg := config.NATSConfig{
		URLs:      []string{s.url},
		Stream:    "DOOMED",
		Subject:   "doomed.a",
		Durable:   "drain",
		FetchWait: 300 * time.Millisecond,
		Retry: config.RetryConfig{
			MaxRetries:   2,
			InitialDelay: 50 * time.Millisecond,
		},
	}

	pub, err := NewPublisher(cfg)
	s.Require().NoError(err)
	s.Require().NoError(pub.Connect(s.ctx))
	s.T().Cleanup(func() { _ = pub.Close() })
	const published = 5
	for i := range published {
		s.Require().NoError(pub.Publish(s.ctx, "doomed.a", fmt.Appendf(nil, "m-%d", i)))
	}

	src, err := NewSource(cfg)
	s.Require().NoError(err)
	s.Require().NoError(src.Connect(s.ctx))
	s.T().Cleanup(func() { _ = src.Close() })

	var consumed atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- src.Stream().ForEach(func(m Msg) {
			_ = m.Ack()
			consumed.Add(1)
		})
	}()

	s.Require().Eventually(func() bool {
		return consumed.Load() == published
	}, 10*time.Second, 50*time.Millisecond, "initial batch should arrive")

	// Removing the server-side stream kills the consumer. Fetch retries
	// exhaust, the pump stops, and the in-flight traversal must end
	// instead of hanging.
	s.Require().NoError(js.DeleteStream(s.ctx, "DOOMED"))

	select {
	case err := <-done:
		s.NoError(err, "traversal ends cleanly after the buffer drains")
	case <-time.After(20 * time.Second):
		s.T().Fatal("traversal did not end after the stream was deleted")
	}
	s.EqualValues(published, consumed.Load())
	s.ErrorIs(src.Err(), errors.ErrMaxRetriesExceeded, "pump failure is reported out of band")
}

func TestNATSIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(NATSIntegrationSuite))
}
