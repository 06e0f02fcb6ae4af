package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/ludo-rooms/internal/game/dice"
	"github.com/palemoky/ludo-rooms/internal/game/room"
	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/testutil"
)

type fixture struct {
	relay    *Relay
	rooms    *room.RoomManager
	recorder *testutil.RecordingRecorder
	red      *testutil.SimpleClient
	blue     *testutil.SimpleClient
}

func newFixture(t *testing.T, rolls ...int) *fixture {
	t.Helper()

	rec := &testutil.RecordingRecorder{}
	rm := room.NewRoomManager(nil, nil)
	red := testutil.NewSimpleClient("red-session")
	blue := testutil.NewSimpleClient("blue-session")

	_, err := rm.CreateRoom(red, "abc", 3)
	require.NoError(t, err)
	_, err = rm.JoinRoom(blue, "abc")
	require.NoError(t, err)
	red.Reset()
	blue.Reset()

	return &fixture{
		relay:    New(rm, dice.NewSequence(rolls...), rec, nil),
		rooms:    rm,
		recorder: rec,
		red:      red,
		blue:     blue,
	}
}

func TestRollDice_Broadcasts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 3)

	value := f.relay.RollDice(f.blue, "abc", room.ColorBlue)
	assert.Equal(t, 4, value)

	for _, c := range []*testutil.SimpleClient{f.red, f.blue} {
		msgs := c.SentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, protocol.MsgDiceRolled, msgs[0].Type)
		p := testutil.DecodePayload[protocol.DiceRolledPayload](msgs[0])
		assert.Equal(t, protocol.DiceRolledPayload{Value: 4, Color: "blue"}, p)
	}

	_, _, _, rolls := f.recorder.Snapshot()
	assert.Equal(t, []int{4}, rolls)
}

func TestRollDice_Dropped(t *testing.T) {
	t.Parallel()

	outsider := testutil.NewSimpleClient("outsider")

	tests := []struct {
		name   string
		client func(f *fixture) *testutil.SimpleClient
		roomID string
		color  room.Color
	}{
		{"unknown room", func(f *fixture) *testutil.SimpleClient { return f.red }, "zzz", room.ColorRed},
		{"not a member", func(*fixture) *testutil.SimpleClient { return outsider }, "abc", room.ColorYellow},
		{"wrong color", func(f *fixture) *testutil.SimpleClient { return f.red }, "abc", room.ColorBlue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, 0)

			assert.Zero(t, f.relay.RollDice(tt.client(f), tt.roomID, tt.color))
			assert.Empty(t, f.red.SentMessages())
			assert.Empty(t, f.blue.SentMessages())
			_, _, _, rolls := f.recorder.Snapshot()
			assert.Empty(t, rolls)
		})
	}
}

func TestMoveToken_PassesTokenDataThrough(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	data := json.RawMessage(`{"position":17,"path":[1,2,3],"meta":{"x":null}}`)

	require.True(t, f.relay.MoveToken(f.red, "abc", room.ColorRed, 2, data))

	msgs := f.blue.MessagesOfType(protocol.MsgTokenMoved)
	require.Len(t, msgs, 1)
	p := testutil.DecodePayload[protocol.TokenMovedEventPayload](msgs[0])
	assert.Equal(t, 2, p.Index)
	assert.Equal(t, "red", p.Color)
	assert.JSONEq(t, string(data), string(p.TokenData))
	assert.Len(t, f.red.MessagesOfType(protocol.MsgTokenMoved), 1)
}

func TestMoveToken_WrongColorDropped(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.False(t, f.relay.MoveToken(f.red, "abc", room.ColorYellow, 0, json.RawMessage(`1`)))
	assert.Empty(t, f.blue.SentMessages())
}

func TestResetToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// 非持有者不能重置他人的棋子
	assert.False(t, f.relay.ResetToken(f.red, "abc", room.ColorBlue, 1, json.RawMessage(`{}`)))
	assert.Empty(t, f.blue.SentMessages())

	require.True(t, f.relay.ResetToken(f.blue, "abc", room.ColorBlue, 1, json.RawMessage(`{"home":true}`)))
	msgs := f.red.MessagesOfType(protocol.MsgTokenReset)
	require.Len(t, msgs, 1)
	p := testutil.DecodePayload[protocol.TokenResetEventPayload](msgs[0])
	assert.Equal(t, "blue", p.Color)
	assert.Equal(t, 1, p.Index)
	assert.JSONEq(t, `{"home":true}`, string(p.TokenData))
}

func TestRelay_AfterPlayerLeft(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)
	f.rooms.HandleDisconnect(f.blue)
	f.red.Reset()

	assert.Zero(t, f.relay.RollDice(f.blue, "abc", room.ColorBlue))
	assert.Empty(t, f.red.SentMessages())
}
