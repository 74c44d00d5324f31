// Package ws connects streams to WebSocket endpoints using
// gorilla/websocket.
//
// # Overview
//
// Source turns one connection into a stream of inbound data frames. A
// read pump feeds a bounded ring buffer whose overflow policy comes
// from configuration, and the source's spliterator drains that buffer.
// The connection can be dialed from a URL or adopted after a
// server-side upgrade:
//
//	src, err := ws.NewSource(cfg)
//	if err := src.Connect(ctx); err != nil { ... }
//	err = src.Stream().ForEach(func(f ws.Frame) { ... })
//
// Sink writes outbound frames with a per-frame write deadline, an
// optional send rate limit, and ping keepalive. SendStream drains a
// whole stream into a sink in encounter order.
//
// WebSocket frames have no server-side redistribution, so a source
// spliterator never splits. Traversal keeps connection order.
//
// # Failure handling
//
// A read failure stops the pump and closes the buffer. Consumers drain
// what was buffered, then the stream ends; the terminal error is
// available from Err. A normal close handshake from the peer ends the
// stream without an error. Send failures are classified transient and
// returned to the caller.
package ws
