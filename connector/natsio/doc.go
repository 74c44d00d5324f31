// Package natsio connects pipelines to NATS JetStream.
//
// # Overview
//
// Source adapts a JetStream pull consumer into a splittable stream
// source. A background pump fetches batches into a bounded prefetch
// ring; the spliterator drains the ring, and TrySplit hands out
// siblings that share the consumer, so parallel pipelines divide the
// subject's messages between them:
//
//	src, err := natsio.NewSource(cfg.NATS)
//	if err != nil {
//		return err
//	}
//	if err := src.Connect(ctx); err != nil {
//		return err
//	}
//	st := src.Stream() // closing the stream closes the source
//
// Publisher writes pipeline output back to JetStream with rate
// limiting, retry with jittered backoff, and per-message ids for
// server-side deduplication. PublishStream drains a whole stream
// through a worker pool of publishes.
//
// # Failure handling
//
// Transient fetch and publish failures are retried per the configured
// retry policy. When the pump exhausts its retries it closes the
// prefetch ring: consumers drain what was buffered and the stream
// ends, with the terminal error available from Source.Err.
package natsio
