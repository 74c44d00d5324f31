package ws

import "github.com/gorilla/websocket"

// Frame is one inbound or outbound data message. Type is
// websocket.TextMessage or websocket.BinaryMessage.
type Frame struct {
	Type int
	Data []byte
}

// Text builds a text frame.
func Text(s string) Frame {
	return Frame{Type: websocket.TextMessage, Data: []byte(s)}
}

// Binary builds a binary frame.
func Binary(b []byte) Frame {
	return Frame{Type: websocket.BinaryMessage, Data: b}
}

// IsText reports whether the frame is a text message.
func (f Frame) IsText() bool {
	return f.Type == websocket.TextMessage
}

// String returns the payload as text.
func (f Frame) String() string {
	return string(f.Data)
}

// kind is the frame type as a bounded metric label.
func (f Frame) kind() string {
	if f.IsText() {
		return "text"
	}
	return "binary"
}
