package runtime

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
	"github.com/Qwertuhh/leanaura-alpha/errors"
	"github.com/Qwertuhh/leanaura-alpha/mocks"
	"github.com/Qwertuhh/leanaura-alpha/moderation"
)

type hubFixture struct {
	*fixture
	hub *RoomHub
}

// newHubFixture assembles a full hub over the given responder, censoring the
// word "badger".
func newHubFixture(t *testing.T, responder *mocks.MockStreamingResponder) *hubFixture {
	t.Helper()
	fx := newFixture(2)
	log := slog.Default()
	streams := NewAIStreamCoordinator(log, responder, fx.broadcaster, fx.metrics)
	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	require.NoError(t, err)
	hub := NewRoomHub(log, fx.store.sessions, fx.store, fx.dir, fx.broadcaster,
		streams, &moderator, fx.metrics)
	return &hubFixture{fixture: fx, hub: hub}
}

// connect registers a connection with the hub without joining any room.
func (fx *hubFixture) connect(id string) *fakeConn {
	conn := newFakeConn(id)
	fx.hub.OnConnect(conn)
	return conn
}

func silentResponder(ctrl *gomock.Controller) *mocks.MockStreamingResponder {
	responder := mocks.NewMockStreamingResponder(ctrl)
	responder.EXPECT().
		Stream(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	return responder
}

func TestRoomHub_JoinNotifiesWholeRoom(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))
	alice := fx.connect("conn-a")
	bob := fx.connect("conn-b")

	// Given alice already in the room
	_, err := fx.hub.OnJoinRequest("conn-a", "r1", "alice")
	req.NoError(err)

	// When bob joins
	snap, err := fx.hub.OnJoinRequest("conn-b", "r1", "bob")
	req.NoError(err)
	req.Equal(2, snap.ParticipantCount)

	// Then both members, bob included, saw the arrival notice with room info
	aliceGot := alice.received()
	req.Len(aliceGot, 2)
	arrival := aliceGot[1]
	req.Equal(chat.KindSystem, arrival.Kind)
	req.Equal("User bob joined the room", arrival.Content)
	req.NotNil(arrival.RoomInfo)
	req.ElementsMatch([]string{"alice", "bob"}, arrival.RoomInfo.Participants)

	bobGot := bob.received()
	req.Len(bobGot, 1)
	req.Equal("User bob joined the room", bobGot[0].Content)
}

func TestRoomHub_JoinWithoutDisplayGetsAnonIdentity(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))
	fx.connect("conn-a")

	// When joining without a display identity
	snap, err := fx.hub.OnJoinRequest("conn-a", "r1", "")

	// Then an anonymous one is generated
	req.NoError(err)
	req.Len(snap.Participants, 1)
	req.True(strings.HasPrefix(snap.Participants[0], "anon-"))
	req.Len(snap.Participants[0], len("anon-")+8)
}

func TestRoomHub_JoinFullRoom(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))
	fx.connect("conn-a")
	fx.connect("conn-b")
	carol := fx.connect("conn-c")

	_, err := fx.hub.OnJoinRequest("conn-a", "r1", "alice")
	req.NoError(err)
	_, err = fx.hub.OnJoinRequest("conn-b", "r1", "bob")
	req.NoError(err)

	// When a third user tries the two-seat room
	_, err = fx.hub.OnJoinRequest("conn-c", "r1", "carol")

	// Then the join fails and carol heard nothing
	req.ErrorIs(err, errors.ErrRoomFull)
	req.Empty(carol.received())
}

func TestRoomHub_JoinOtherRoomNotifiesDeparture(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))
	alice := fx.connect("conn-a")
	bob := fx.connect("conn-b")

	_, err := fx.hub.OnJoinRequest("conn-a", "r1", "alice")
	req.NoError(err)
	_, err = fx.hub.OnJoinRequest("conn-b", "r1", "bob")
	req.NoError(err)

	// When alice moves to another room
	_, err = fx.hub.OnJoinRequest("conn-a", "r2", "alice")
	req.NoError(err)

	// Then bob was told she left r1
	bobGot := bob.received()
	departure := bobGot[len(bobGot)-1]
	req.Equal("User alice left the room", departure.Content)
	req.Equal(chat.RoomID("r1"), departure.Room)

	// And alice only saw her own arrival in r2 afterwards
	aliceGot := alice.received()
	req.Equal("User alice joined the room", aliceGot[len(aliceGot)-1].Content)
	req.Equal(chat.RoomID("r2"), aliceGot[len(aliceGot)-1].Room)
}

func TestRoomHub_ChatEchoesToEveryoneThenStreams(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	// Given a responder that streams two fragments for any prompt
	responder := mocks.NewMockStreamingResponder(ctrl)
	responder.EXPECT().
		Stream(gomock.Any(), "hello everyone", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, onFragment func(string) error) error {
			req.NoError(onFragment("Hi "))
			req.NoError(onFragment("folks!"))
			return nil
		})

	fx := newHubFixture(t, responder)
	alice := fx.connect("conn-a")
	bob := fx.connect("conn-b")
	_, err := fx.hub.OnJoinRequest("conn-a", "r1", "alice")
	req.NoError(err)
	_, err = fx.hub.OnJoinRequest("conn-b", "r1", "bob")
	req.NoError(err)

	// When alice sends a chat message
	req.NoError(fx.hub.OnChatMessage("conn-a", "hello everyone"))

	// Then both members, sender included, observe the echo followed by the
	// full stream sequence
	wantTail := func(msgs []chat.Message) bool {
		if len(msgs) < 5 {
			return false
		}
		tail := msgs[len(msgs)-5:]
		return tail[0].Kind == chat.KindChat &&
			tail[1].Kind == chat.KindTyping && tail[1].IsTyping &&
			tail[2].Kind == chat.KindAIChunk &&
			tail[3].Kind == chat.KindAIChunk &&
			tail[4].Kind == chat.KindTyping && !tail[4].IsTyping
	}
	req.Eventually(func() bool {
		return wantTail(alice.received()) && wantTail(bob.received())
	}, time.Second, 10*time.Millisecond)

	bobGot := bob.received()
	echo := bobGot[len(bobGot)-5]
	req.Equal("alice", echo.SenderID)
	req.Equal("hello everyone", echo.Content)
	req.Equal("Hi ", bobGot[len(bobGot)-3].Content)
	req.Equal("folks!", bobGot[len(bobGot)-2].Content)
}

func TestRoomHub_ChatWithoutRoom(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))
	fx.connect("conn-a")

	err := fx.hub.OnChatMessage("conn-a", "hello?")
	req.ErrorIs(err, errors.ErrNotInRoom)
}

func TestRoomHub_ChatContentIsCensored(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	responder := mocks.NewMockStreamingResponder(ctrl)
	// The responder only ever sees the censored prompt.
	responder.EXPECT().
		Stream(gomock.Any(), "you ******", gomock.Any()).
		Return(nil)

	fx := newHubFixture(t, responder)
	alice := fx.connect("conn-a")
	_, err := fx.hub.OnJoinRequest("conn-a", "r1", "alice")
	req.NoError(err)

	// When the message contains a blacklisted word
	req.NoError(fx.hub.OnChatMessage("conn-a", "you badger"))

	// The stream runs on its own goroutine; wait for its closing signal.
	req.Eventually(func() bool {
		got := alice.received()
		last := got[len(got)-1]
		return last.Kind == chat.KindTyping && !last.IsTyping
	}, time.Second, 10*time.Millisecond)

	// Then the echo is censored
	var echo *chat.Message
	for _, msg := range alice.received() {
		if msg.Kind == chat.KindChat {
			echo = &msg
			break
		}
	}
	req.NotNil(echo)
	req.Equal("you ******", echo.Content)
	req.Equal(uint64(1), fx.metrics.Snapshot().MessagesCensored)
}

func TestRoomHub_LeaveNotifiesRemaining(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))
	alice := fx.connect("conn-a")
	bob := fx.connect("conn-b")
	_, err := fx.hub.OnJoinRequest("conn-a", "r1", "alice")
	req.NoError(err)
	_, err = fx.hub.OnJoinRequest("conn-b", "r1", "bob")
	req.NoError(err)

	// When bob leaves
	req.NoError(fx.hub.OnLeaveRequest("conn-b"))

	// Then alice was notified, bob was not
	aliceGot := alice.received()
	departure := aliceGot[len(aliceGot)-1]
	req.Equal("User bob left the room", departure.Content)
	req.NotNil(departure.RoomInfo)
	req.Equal(1, departure.RoomInfo.ParticipantCount)

	bobGot := bob.received()
	req.Equal("User bob joined the room", bobGot[len(bobGot)-1].Content)

	// And leaving again yields the typed error
	req.ErrorIs(fx.hub.OnLeaveRequest("conn-b"), errors.ErrNotInRoom)
}

func TestRoomHub_DisconnectLeavesRoomSilentlyForSelf(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))
	fx.connect("conn-a")
	bob := fx.connect("conn-b")
	_, err := fx.hub.OnJoinRequest("conn-a", "r1", "alice")
	req.NoError(err)
	_, err = fx.hub.OnJoinRequest("conn-b", "r1", "bob")
	req.NoError(err)

	// When alice disconnects
	fx.hub.OnDisconnect("conn-a")

	// Then bob saw the departure and alice is fully gone
	bobGot := bob.received()
	req.Equal("User alice left the room", bobGot[len(bobGot)-1].Content)

	_, ok := fx.dir.Get("conn-a")
	req.False(ok)
	req.Equal(int64(1), fx.metrics.Snapshot().ActiveConnections)
}

func TestRoomHub_DisconnectLastMemberClosesRoom(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))
	fx.connect("conn-a")
	_, err := fx.hub.OnJoinRequest("conn-a", "r1", "alice")
	req.NoError(err)

	// When the only member disconnects
	fx.hub.OnDisconnect("conn-a")

	// Then the room is gone
	_, err = fx.hub.GetRoom("r1")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func TestRoomHub_DeleteRoomNotifiesEachMemberOnce(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))
	alice := fx.connect("conn-a")
	bob := fx.connect("conn-b")
	_, err := fx.hub.OnJoinRequest("conn-a", "r1", "alice")
	req.NoError(err)
	_, err = fx.hub.OnJoinRequest("conn-b", "r1", "bob")
	req.NoError(err)

	// When the room is deleted
	removed, err := fx.hub.DeleteRoom("r1")
	req.NoError(err)
	req.Equal(2, removed)

	// Then each member got exactly one closing notice and the room is gone
	for _, conn := range []*fakeConn{alice, bob} {
		var notices int
		for _, msg := range conn.received() {
			if msg.Content == "Room r1 has been deleted" {
				notices++
			}
		}
		req.Equal(1, notices)
	}

	req.Empty(fx.hub.ListRooms())

	// And both connections survive and can join again
	snap, err := fx.hub.OnJoinRequest("conn-a", "r2", "alice")
	req.NoError(err)
	req.Equal(1, snap.ParticipantCount)
}

func TestRoomHub_DeleteUnknownRoom(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fx := newHubFixture(t, silentResponder(ctrl))

	_, err := fx.hub.DeleteRoom("ghost")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}
