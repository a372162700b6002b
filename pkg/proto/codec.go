package proto

import (
	"bytes"
	"ctchen222/Battleship/internal/validator"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const (
	// HeaderSize is the width of the ASCII decimal length prefix of a frame.
	// Both ends of a connection must agree on it.
	HeaderSize = 8

	// MaxFrameBody is the largest body length a HeaderSize-digit header can express.
	MaxFrameBody = 99_999_999

	// DefaultMaxBodySize bounds the body a reader will accept unless told otherwise.
	DefaultMaxBodySize = 1 << 20
)

var (
	// ErrFraming reports a truncated or malformed frame, including a peer that
	// closed the stream mid-message. Callers treat it as a disconnect.
	ErrFraming = errors.New("framing error")
	// ErrFrameTooLarge reports a body that does not fit the header or the reader's limit.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrUnknownMessageType reports a type tag outside the closed enumeration.
	ErrUnknownMessageType = errors.New("unknown message type")
	// ErrInvalidPayload reports a known type whose data fails validation.
	ErrInvalidPayload = errors.New("invalid payload")
)

type envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

var decoders = map[Type]func(json.RawMessage) (Message, error){
	TypeConnectAck:           decodeAs[ConnectAck],
	TypeWaiting:              decodeAs[Waiting],
	TypeGameStart:            decodeAs[GameStart],
	TypeShoot:                decodeAs[Shoot],
	TypeShotResult:           decodeAs[ShotResult],
	TypeOpponentShot:         decodeAs[OpponentShot],
	TypePlayAgain:            decodeAs[PlayAgain],
	TypeDisconnect:           decodeAs[Disconnect],
	TypeOpponentDisconnected: decodeAs[OpponentDisconnected],
	TypeError:                decodeAs[Error],
}

// Marshal serializes a message into its JSON body: {"type": ..., "data": {...}}.
func Marshal(m Message) ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil message")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s data: %w", m.MessageType(), err)
	}
	body, err := json.Marshal(envelope{Type: m.MessageType(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s envelope: %w", m.MessageType(), err)
	}
	return body, nil
}

// Unmarshal parses a JSON body into the concrete message for its type tag
// and validates the required data keys. An absent data field decodes as empty.
func Unmarshal(body []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed body: %w", ErrFraming, err)
	}
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	return decode(raw)
}

func decodeAs[T Message](raw json.RawMessage) (Message, error) {
	var m T
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, m.MessageType(), err)
	}
	if err := validator.GetValidator().Struct(m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, m.MessageType(), err)
	}
	return m, nil
}

// Encode frames a message: a left-justified, space-padded decimal length
// header of exactly HeaderSize bytes followed by the JSON body.
func Encode(m Message) ([]byte, error) {
	body, err := Marshal(m)
	if err != nil {
		return nil, err
	}
	if len(body) > MaxFrameBody {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}
	frame := make([]byte, 0, HeaderSize+len(body))
	frame = fmt.Appendf(frame, "%-*d", HeaderSize, len(body))
	return append(frame, body...), nil
}

// WriteMessage encodes m and writes the whole frame to w.
func WriteMessage(w io.Writer, m Message) error {
	frame, err := Encode(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", m.MessageType(), err)
	}
	return nil
}

// ReadFrame reads one frame from r and returns its body. Short reads are
// retried until the body is complete; a stream that ends early is ErrFraming.
// maxBody <= 0 means DefaultMaxBodySize.
func ReadFrame(r io.Reader, maxBody int) ([]byte, error) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrFraming, err)
	}
	size, err := strconv.ParseUint(string(bytes.TrimSpace(header[:])), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad header %q", ErrFraming, header[:])
	}
	if size > uint64(maxBody) {
		return nil, fmt.Errorf("%w: %w: %d bytes exceeds %d", ErrFraming, ErrFrameTooLarge, size, maxBody)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: reading %d byte body: %w", ErrFraming, size, err)
	}
	return body, nil
}

// ReadMessage reads and decodes one frame from r.
func ReadMessage(r io.Reader, maxBody int) (Message, error) {
	body, err := ReadFrame(r, maxBody)
	if err != nil {
		return nil, err
	}
	return Unmarshal(body)
}
