package network

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"keyemu/internal/protocol"
	"keyemu/internal/vk"

	"github.com/gorilla/websocket"
)

// Client is a WebSocket client that drives a remote keyemu daemon. It is
// used by the CLI's remote mode and follows a simple request/response
// discipline: each command waits for the daemon's result message.
type Client struct {
	conn  *websocket.Conn
	token string
}

// Dial connects to the daemon at addr ("host:port"), authenticates, and
// returns a ready client.
func Dial(addr, token, clientName, clientVersion string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	c := &Client{conn: conn, token: token}

	err = c.roundTrip(protocol.Message{
		Type: protocol.TypeAuth,
		Payload: protocol.AuthPayload{
			Token:         token,
			ClientName:    clientName,
			ClientVersion: clientVersion,
		},
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return c, nil
}

// TypeText types text on the remote machine. Blocks until the daemon
// reports completion, so the read deadline scales with the text length.
func (c *Client) TypeText(text string, delayMS, wpm int, skipUnsupported bool) error {
	return c.roundTrip(protocol.Message{
		Type: protocol.TypeText,
		Payload: protocol.TextPayload{
			Text:            text,
			DelayMS:         delayMS,
			WPM:             wpm,
			SkipUnsupported: skipUnsupported,
		},
	})
}

// Tap taps a key combination ("Ctrl+Shift+A") on the remote machine.
func (c *Client) Tap(chord string) error {
	return c.roundTrip(protocol.Message{
		Type:    protocol.TypeTap,
		Payload: protocol.TapPayload{Chord: chord},
	})
}

// Key sends a raw key down or up event. Fire-and-forget, mirroring the UDP
// stream: the daemon sends no result for key events.
func (c *Client) Key(code vk.Code, pressed bool) error {
	return c.write(protocol.Message{
		Type: protocol.TypeKey,
		Payload: protocol.KeyPayload{
			KeyCode:   uint16(code),
			Pressed:   pressed,
			Timestamp: time.Now().UnixMilli(),
		},
	})
}

// Status fetches the daemon state.
func (c *Client) Status() (protocol.StatusPayload, error) {
	var status protocol.StatusPayload

	if err := c.write(protocol.Message{Type: protocol.TypeStatus}); err != nil {
		return status, err
	}

	msg, err := c.read(10*time.Second, protocol.TypeStatus)
	if err != nil {
		return status, err
	}

	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return status, err
	}
	err = json.Unmarshal(data, &status)
	return status, err
}

// Close closes the connection.
func (c *Client) Close() error {
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// roundTrip sends a message and waits for the daemon's result.
func (c *Client) roundTrip(msg protocol.Message) error {
	if err := c.write(msg); err != nil {
		return err
	}

	// Typing long strings can take minutes; keep the deadline generous.
	resp, err := c.read(5*time.Minute, protocol.TypeResult)
	if err != nil {
		return err
	}

	var result protocol.ResultPayload
	data, err := json.Marshal(resp.Payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("daemon rejected request: %s", result.Error)
	}
	return nil
}

func (c *Client) write(msg protocol.Message) error {
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// read returns the next message of the wanted type. Broadcasts of other
// types that arrive while waiting are skipped.
func (c *Client) read(timeout time.Duration, want protocol.MessageType) (protocol.Message, error) {
	var msg protocol.Message
	c.conn.SetReadDeadline(time.Now().Add(timeout))

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return msg, err
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			return msg, fmt.Errorf("invalid message from daemon: %w", err)
		}
		if msg.Type != want {
			continue
		}
		return msg, nil
	}
}
