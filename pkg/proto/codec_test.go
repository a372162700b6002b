package proto

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func sampleGrid() Grid {
	g := make(Grid, BoardSize)
	for i := range g {
		g[i] = make([]int, BoardSize)
	}
	g[0][0] = 1
	g[3][4] = 3
	g[9][9] = 2
	return g
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{name: "connect-ack", msg: ConnectAck{PlayerID: 1, BoardSize: BoardSize, YourBoard: sampleGrid()}},
		{name: "waiting", msg: Waiting{Message: "waiting for opponent"}},
		{name: "game-start", msg: GameStart{YourTurn: true, YourBoard: sampleGrid(), OpponentBoard: sampleGrid()}},
		{name: "shoot", msg: NewShoot(4, 7)},
		{name: "shoot at origin", msg: NewShoot(0, 0)},
		{name: "shot-result miss", msg: ShotResult{Row: 2, Col: 3, Outcome: OutcomeMiss}},
		{name: "shot-result sunk", msg: ShotResult{Row: 0, Col: 0, Outcome: OutcomeSunk, YourTurn: true, SunkCells: [][2]int{{0, 0}}}},
		{name: "shot-result game over", msg: ShotResult{Row: 5, Col: 5, Outcome: OutcomeSunk, GameOver: true, YouWon: boolPtr(true), SunkCells: [][2]int{{5, 5}, {6, 5}}}},
		{name: "opponent-shot", msg: OpponentShot{Row: 1, Col: 1, Outcome: OutcomeHit, GameOver: false}},
		{name: "opponent-shot lost", msg: OpponentShot{Row: 1, Col: 1, Outcome: OutcomeSunk, GameOver: true, YouWon: boolPtr(false), SunkCells: [][2]int{{1, 1}}}},
		{name: "play-again", msg: PlayAgain{}},
		{name: "disconnect empty", msg: Disconnect{}},
		{name: "disconnect with message", msg: Disconnect{Message: "server shutting down"}},
		{name: "opponent-disconnected", msg: OpponentDisconnected{Message: "opponent left the game"}},
		{name: "error", msg: Error{Message: "not your turn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Encode(tt.msg)
			require.NoError(t, err)

			got, err := ReadMessage(bytes.NewReader(frame), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.msg, got)
		})
	}
}

func TestEncodeHeader(t *testing.T) {
	frame, err := Encode(PlayAgain{})
	require.NoError(t, err)

	body := `{"type":"play-again","data":{}}`
	require.Len(t, frame, HeaderSize+len(body))
	assert.Equal(t, "31      ", string(frame[:HeaderSize]))
	assert.Equal(t, body, string(frame[HeaderSize:]))
}

func TestReadFrameShortReads(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, NewShoot(3, 9)))
	require.NoError(t, WriteMessage(&buf, Error{Message: "second"}))

	r := iotest.OneByteReader(&buf)

	first, err := ReadMessage(r, 0)
	require.NoError(t, err)
	assert.Equal(t, NewShoot(3, 9), first)

	second, err := ReadMessage(r, 0)
	require.NoError(t, err)
	assert.Equal(t, Error{Message: "second"}, second)

	_, err = ReadMessage(r, 0)
	assert.ErrorIs(t, err, ErrFraming)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrameErrors(t *testing.T) {
	full, err := Encode(Waiting{Message: "hold on"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   []byte
		maxBody int
		wantErr []error
	}{
		{name: "empty stream", input: nil, wantErr: []error{ErrFraming}},
		{name: "closed mid-header", input: full[:3], wantErr: []error{ErrFraming, io.ErrUnexpectedEOF}},
		{name: "closed mid-body", input: full[:len(full)-2], wantErr: []error{ErrFraming, io.ErrUnexpectedEOF}},
		{name: "non numeric header", input: []byte("abcdefgh{}"), wantErr: []error{ErrFraming}},
		{name: "negative header", input: []byte("-5      "), wantErr: []error{ErrFraming}},
		{name: "body over limit", input: full, maxBody: 4, wantErr: []error{ErrFraming, ErrFrameTooLarge}},
		{name: "malformed json", input: []byte("5       {nope"), wantErr: []error{ErrFraming}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMessage(bytes.NewReader(tt.input), tt.maxBody)
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestUnmarshalValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Message
		wantErr error
	}{
		{name: "unknown type", body: `{"type":"fire","data":{}}`, wantErr: ErrUnknownMessageType},
		{name: "missing type", body: `{"data":{"row":1}}`, wantErr: ErrUnknownMessageType},
		{name: "shoot without col", body: `{"type":"shoot","data":{"row":1}}`, wantErr: ErrInvalidPayload},
		{name: "shoot off board", body: `{"type":"shoot","data":{"row":10,"col":0}}`, wantErr: ErrInvalidPayload},
		{name: "shoot with string row", body: `{"type":"shoot","data":{"row":"a","col":0}}`, wantErr: ErrInvalidPayload},
		{name: "error without message", body: `{"type":"error","data":{}}`, wantErr: ErrInvalidPayload},
		{name: "shot-result bad outcome", body: `{"type":"shot-result","data":{"row":0,"col":0,"outcome":"boom"}}`, wantErr: ErrInvalidPayload},
		{name: "play-again without data", body: `{"type":"play-again"}`, want: PlayAgain{}},
		{name: "disconnect with null data", body: `{"type":"disconnect","data":null}`, want: Disconnect{}},
		{name: "shoot ignores extra keys", body: `{"type":"shoot","data":{"row":2,"col":8,"force":true}}`, want: NewShoot(2, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.body))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidPayloadNamesWireField(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"shoot","data":{"col":1}}`))
	require.ErrorIs(t, err, ErrInvalidPayload)
	assert.True(t, strings.Contains(err.Error(), "row"), err.Error())
}

func TestMarshalNil(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)
}
