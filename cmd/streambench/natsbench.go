package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/streamkit/config"
	"github.com/c360/streamkit/connector/natsio"
	"github.com/c360/streamkit/metric"
	"github.com/c360/streamkit/stream"
)

// runNATSBench measures the JetStream round trip: a publish leg that
// drains a range pipeline into the server, then a consume leg that
// pulls every message back and acknowledges it. The bench provisions a
// memory-backed stream and removes it afterwards.
func (b *bench) runNATSBench(cfg *config.Config, registry *metric.MetricsRegistry, logger *slog.Logger) ([]benchResult, error) {
	ncfg := cfg.NATS
	if ncfg.Stream == "" {
		ncfg.Stream = "STREAMBENCH"
	}
	if ncfg.Subject == "" {
		ncfg.Subject = "streambench.data"
	}
	if ncfg.Durable == "" {
		ncfg.Durable = "streambench"
	}

	js, cleanup, err := provisionStream(b.ctx, ncfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	publish, err := b.publishLeg(ncfg, registry, logger)
	if err != nil {
		return nil, fmt.Errorf("publish leg: %w", err)
	}

	info, err := streamInfo(b.ctx, js, ncfg.Stream)
	if err != nil {
		return nil, err
	}
	logger.Info("publish leg finished",
		"stream", ncfg.Stream,
		"messages", info.State.Msgs,
		"bytes", info.State.Bytes)

	consume, err := b.consumeLeg(ncfg, registry, logger)
	if err != nil {
		return nil, fmt.Errorf("consume leg: %w", err)
	}

	return []benchResult{publish, consume}, nil
}

// provisionStream creates the bench stream through a throwaway admin
// connection. Bench data is disposable, so the stream is memory backed
// and deleted on the way out.
func provisionStream(ctx context.Context, cfg config.NATSConfig) (jetstream.JetStream, func(), error) {
	nc, err := nats.Connect(strings.Join(cfg.URLs, ","), nats.Name("streambench-admin"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect admin: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("open jetstream: %w", err)
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject},
		Storage:  jetstream.MemoryStorage,
	})
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create stream %s: %w", cfg.Stream, err)
	}

	cleanup := func() {
		delCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = js.DeleteStream(delCtx, cfg.Stream)
		nc.Close()
	}
	return js, cleanup, nil
}

func streamInfo(ctx context.Context, js jetstream.JetStream, name string) (*jetstream.StreamInfo, error) {
	s, err := js.Stream(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup stream %s: %w", name, err)
	}
	info, err := s.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("stream info %s: %w", name, err)
	}
	return info, nil
}

func (b *bench) publishLeg(cfg config.NATSConfig, registry *metric.MetricsRegistry, logger *slog.Logger) (benchResult, error) {
	pub, err := natsio.NewPublisher(cfg,
		natsio.WithLogger(logger),
		natsio.WithMetricsRegistry(registry, "bench_publisher"),
		natsio.WithClientName("streambench-pub"))
	if err != nil {
		return benchResult{}, err
	}
	if err := pub.Connect(b.ctx); err != nil {
		return benchResult{}, err
	}
	defer func() { _ = pub.Close() }()

	src := tune(b, stream.RangeStream(0, b.elements), false)
	start := time.Now()
	err = natsio.PublishStream(b.ctx, src, pub, cfg.Subject, func(v int64) ([]byte, error) {
		return fmt.Appendf(nil, "%d", v), nil
	})
	elapsed := time.Since(start)
	if err != nil {
		return benchResult{}, err
	}

	return benchResult{
		name:     "nats_publish",
		mode:     "workers",
		elements: b.elements,
		duration: elapsed,
		value:    fmt.Sprintf("%d msgs", b.elements),
	}, nil
}

func (b *bench) consumeLeg(cfg config.NATSConfig, registry *metric.MetricsRegistry, logger *slog.Logger) (benchResult, error) {
	src, err := natsio.NewSource(cfg,
		natsio.WithLogger(logger),
		natsio.WithMetricsRegistry(registry, "bench_source"),
		natsio.WithClientName("streambench-sub"))
	if err != nil {
		return benchResult{}, err
	}
	if err := src.Connect(b.ctx); err != nil {
		return benchResult{}, err
	}

	var consumed int64
	start := time.Now()
	err = tune(b, src.Stream(), false).Limit(b.elements).ForEach(func(m natsio.Msg) {
		consumed++
		_ = m.Ack()
	})
	elapsed := time.Since(start)
	if closeErr := src.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = src.Err()
	}
	if err != nil {
		return benchResult{}, err
	}
	if consumed != b.elements {
		return benchResult{}, fmt.Errorf("consumed %d of %d messages", consumed, b.elements)
	}

	return benchResult{
		name:     "nats_consume",
		mode:     "sequential",
		elements: b.elements,
		duration: elapsed,
		value:    fmt.Sprintf("%d msgs", consumed),
	}, nil
}
