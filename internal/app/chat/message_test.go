package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/app/user"
)

func TestMapURL(t *testing.T) {
	assert.Equal(t, "https://google.com/maps?q=51.5,-0.12", MapURL(51.5, -0.12))
	assert.Equal(t, "https://google.com/maps?q=0,0", MapURL(0, 0))
	assert.Equal(t, "https://google.com/maps?q=-33.8688,151.2093", MapURL(-33.8688, 151.2093))
}

func TestEventJSONShape(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	raw, err := json.Marshal(NewMessage("Ann", "hi", at))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"message","payload":{"username":"Ann","text":"hi","createdAt":1700000000123}}`, string(raw))

	raw, err = json.Marshal(NewLocationMessage("Ann", 51.5, -0.12, at))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"locationMessage","payload":{"username":"Ann","url":"https://google.com/maps?q=51.5,-0.12","createdAt":1700000000123}}`, string(raw))

	raw, err = json.Marshal(NewRoomData("Lobby", []user.User{{ID: "secret", Username: "Ann", Room: "Lobby"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"roomData","payload":{"room":"Lobby","users":[{"username":"Ann","room":"Lobby"}]}}`, string(raw))
}

func TestRoomDataEmptyRosterIsArray(t *testing.T) {
	raw, err := json.Marshal(NewRoomData("Lobby", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"roomData","payload":{"room":"Lobby","users":[]}}`, string(raw))
}

func TestAckFrameOmitsEmptyError(t *testing.T) {
	raw, err := json.Marshal(AckFrame{Name: EventAck, AckID: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ack","ackId":7}`, string(raw))
}

func TestSendMessagePayloadAcceptsBothForms(t *testing.T) {
	var p SendMessagePayload
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &p))
	assert.Equal(t, "hello", p.Text)

	p = SendMessagePayload{}
	require.NoError(t, json.Unmarshal([]byte(`{"text":"world"}`), &p))
	assert.Equal(t, "world", p.Text)

	assert.Error(t, json.Unmarshal([]byte(`42`), &p))
}
