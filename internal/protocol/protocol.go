// Package protocol defines the wire types shared by the typing API server
// and its remote clients.
package protocol

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeAuth is sent by a client immediately after connection to authenticate
	TypeAuth MessageType = "auth"

	// TypeText requests typing a whole string with timing options
	TypeText MessageType = "type_text"

	// TypeTap requests a single key tap, optionally with modifiers ("Ctrl+C")
	TypeTap MessageType = "tap"

	// TypeKey is a raw key down/up event (WebSocket fallback for the UDP stream)
	TypeKey MessageType = "key"

	// TypeStatus requests the daemon state; the server answers with the same type
	TypeStatus MessageType = "status"

	// TypeResult reports the outcome of a previously submitted request
	TypeResult MessageType = "result"

	// TypePing can be used for application-level heartbeats if needed
	TypePing MessageType = "ping"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// AuthPayload is the payload for TypeAuth
type AuthPayload struct {
	Token         string `json:"token"`
	ClientName    string `json:"client_name"`
	ClientVersion string `json:"client_version"`
}

// TextPayload is the payload for TypeText
type TextPayload struct {
	Text string `json:"text"`

	// DelayMS is the fixed inter-character delay; ignored when WPM is set
	DelayMS int `json:"delay_ms,omitempty"`

	// WPM humanizes delays from a typing speed when > 0
	WPM int `json:"wpm,omitempty"`

	// SkipUnsupported types around unmappable characters
	SkipUnsupported bool `json:"skip_unsupported,omitempty"`
}

// TapPayload is the payload for TypeTap
type TapPayload struct {
	// Chord is a key combination string, e.g. "Ctrl+Shift+A" or "enter"
	Chord string `json:"chord"`
}

// KeyPayload is the payload for TypeKey
type KeyPayload struct {
	KeyCode   uint16 `json:"keycode"`
	Pressed   bool   `json:"pressed"`
	Timestamp int64  `json:"ts,omitempty"` // Unix ms
}

// StatusPayload is the payload for TypeStatus responses
type StatusPayload struct {
	Platform string   `json:"platform"`
	Paused   bool     `json:"paused"`
	HeldKeys []string `json:"held_keys"`
}

// ResultPayload is the payload for TypeResult
type ResultPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
