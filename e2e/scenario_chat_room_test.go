package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
)

type testChatRoomSuite struct {
	BaseSuite
}

func TestChatRoomSuite(t *testing.T) {
	suite.Run(t, &testChatRoomSuite{})
}

func (s *testChatRoomSuite) TestFullChatRoomFlow() {
	roomID := "e2e-room"

	alice := s.DialClient()
	bob := s.DialClient()

	// --- STEP 1: ALICE OPENS THE ROOM ---
	s.Run("Step 1: First join creates the room", func() {
		alice.Join(roomID, "alice")

		arrival := alice.NextOfKind(chat.KindSystem)
		s.Require().Equal("User alice joined the room", arrival.Content)
		s.Require().NotNil(arrival.RoomInfo)
		s.Require().Equal(1, arrival.RoomInfo.ParticipantCount)

		confirm := alice.NextOfKind(chat.KindSystem)
		s.Require().Equal("You joined room "+roomID, confirm.Content)
	})

	// --- STEP 2: BOB FILLS THE ROOM ---
	s.Run("Step 2: Second join is seen by both sides", func() {
		bob.Join(roomID, "bob")

		confirm := bob.NextOfKind(chat.KindSystem)
		s.Require().Contains([]string{"User bob joined the room", "You joined room " + roomID}, confirm.Content)

		arrival := alice.NextOfKind(chat.KindSystem)
		s.Require().Equal("User bob joined the room", arrival.Content)
		s.Require().NotNil(arrival.RoomInfo)
		s.Require().Equal(2, arrival.RoomInfo.ParticipantCount)
		s.Require().True(arrival.RoomInfo.IsFull)
	})

	// --- STEP 3: CAPACITY IS ENFORCED ---
	s.Run("Step 3: Third join bounces off the full room", func() {
		carol := s.DialClient()
		carol.Join(roomID, "carol")

		rejection := carol.NextOfKind(chat.KindSystem)
		s.Require().Equal("room is full", rejection.Content)
	})

	// --- STEP 4: CHAT ECHO AND AI STREAM ---
	s.Run("Step 4: Chat reaches everyone and triggers the stream", func() {
		alice.Chat("hello")

		for _, client := range []*Client{alice, bob} {
			echo := client.NextOfKind(chat.KindChat)
			s.Require().Equal("alice", echo.SenderID)
			s.Require().Equal("hello", echo.Content)

			response := client.CollectStream()
			s.Require().Equal(
				"Hello there! I'm a helpful AI assistant. How can I help you today?",
				strings.TrimSpace(response))
		}
	})

	// --- STEP 5: MODERATION ---
	s.Run("Step 5: Blacklisted words are censored in the echo", func() {
		bob.Chat("you badger")

		echo := alice.NextOfKind(chat.KindChat)
		s.Require().Equal("you ******", echo.Content)

		// Both sides drain the triggered stream before the next step.
		_ = alice.CollectStream()
		_ = bob.NextOfKind(chat.KindChat)
		_ = bob.CollectStream()
	})

	// --- STEP 6: REST SURFACE SEES THE ROOM ---
	s.Run("Step 6: Room shows up on the admin surface", func() {
		resp, err := http.Get(s.RestURL("/rooms/" + roomID))
		s.Require().NoError(err)
		defer resp.Body.Close()
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		var snap chat.RoomSnapshot
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&snap))
		s.Require().Equal(2, snap.ParticipantCount)
		s.Require().ElementsMatch([]string{"alice", "bob"}, snap.Participants)
	})

	// --- STEP 7: LEAVING NOTIFIES THE SURVIVOR ---
	s.Run("Step 7: Leave is announced to the remaining member", func() {
		bob.Leave()

		departure := alice.NextOfKind(chat.KindSystem)
		s.Require().Equal("User bob left the room", departure.Content)
		s.Require().NotNil(departure.RoomInfo)
		s.Require().Equal(1, departure.RoomInfo.ParticipantCount)
	})

	// --- STEP 8: ADMIN DELETION CLOSES THE ROOM ---
	s.Run("Step 8: Room deletion notifies members and empties the listing", func() {
		request, err := http.NewRequest(http.MethodDelete, s.RestURL("/rooms/"+roomID), nil)
		s.Require().NoError(err)
		resp, err := http.DefaultClient.Do(request)
		s.Require().NoError(err)
		defer resp.Body.Close()
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		closing := alice.NextOfKind(chat.KindSystem)
		s.Require().Equal("Room "+roomID+" has been deleted", closing.Content)

		listResp, err := http.Get(s.RestURL("/rooms"))
		s.Require().NoError(err)
		defer listResp.Body.Close()

		var rooms []chat.RoomSnapshot
		s.Require().NoError(json.NewDecoder(listResp.Body).Decode(&rooms))
		s.Require().Empty(rooms)
	})
}
