package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/palemoky/ludo-rooms/internal/protocol"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomID: "abc", Color: "red"})
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgRoomCreated, msg.Type)
	assert.JSONEq(t, `{"roomId":"abc","color":"red"}`, string(msg.Payload))

	empty, err := NewMessage(protocol.MsgLeaveRoom, nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Payload)

	_, err = NewMessage(protocol.MsgError, make(chan int))
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewMessage(protocol.MsgError, make(chan int)) })
}

func TestEncode(t *testing.T) {
	t.Parallel()

	data, err := Encode(MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{Color: "blue"}))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"playerLeft","payload":{"color":"blue"}}`, string(data))

	// 无 payload 时省略字段，且不转义 HTML
	data, err = Encode(&protocol.Message{Type: protocol.MsgLeaveRoom})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"leaveRoom"}`, string(data))

	data, err = Encode(NewErrorMessageWithText(protocol.ErrCodeRoomExists, "Room <a> already exists"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<a>")
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    protocol.MessageType
		wantErr error
	}{
		{"with payload", `{"type":"rollDice","payload":{"roomId":"abc","color":"red"}}`, protocol.MsgRollDice, nil},
		{"no payload", `{"type":"leaveRoom"}`, protocol.MsgLeaveRoom, nil},
		{"unknown type kept", `{"type":"dance"}`, "dance", nil},
		{"missing type", `{"payload":{}}`, "", ErrMissingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, err := Decode([]byte(tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.Type)
		})
	}

	for _, bad := range []string{"", "not json", `[1,2]`, `{"type":5}`} {
		_, err := Decode([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(protocol.MsgDiceRolled, protocol.DiceRolledPayload{Value: 6, Color: "green"})
	p, err := ParsePayload[protocol.DiceRolledPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Value)
	assert.Equal(t, "green", p.Color)

	_, err = ParsePayload[protocol.DiceRolledPayload](&protocol.Message{Type: protocol.MsgDiceRolled})
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = ParsePayload[protocol.DiceRolledPayload](&protocol.Message{Payload: json.RawMessage(`"x"`)})
	assert.Error(t, err)
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(protocol.ErrCodeInvalidMsg)
	assert.Equal(t, protocol.MsgError, msg.Type)

	p, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, p.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeInvalidMsg], p.Message)
}

func TestEncodeDecode_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		color := rapid.SampledFrom([]string{"red", "blue", "yellow", "green"}).Draw(t, "color")
		index := rapid.IntRange(0, 3).Draw(t, "index")
		pos := rapid.IntRange(0, 56).Draw(t, "pos")
		tokenData, _ := json.Marshal(map[string]int{"position": pos})

		data, err := Encode(MustNewMessage(protocol.MsgTokenMoved, protocol.TokenMovedEventPayload{
			Index:     index,
			Color:     color,
			TokenData: tokenData,
		}))
		if err != nil {
			t.Fatal(err)
		}

		msg, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		p, err := ParsePayload[protocol.TokenMovedEventPayload](msg)
		if err != nil {
			t.Fatal(err)
		}
		if p.Color != color || p.Index != index || string(p.TokenData) != string(tokenData) {
			t.Fatalf("got %+v", p)
		}
	})
}
