package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvent_SignalRoundTripsVerbatim(t *testing.T) {
	req := require.New(t)
	raw := []byte(`{"type":"webrtc_signal","signal":{"sdp":"offer","candidates":[1,2,3]}}`)

	var ev Event
	req.NoError(json.Unmarshal(raw, &ev))
	req.Equal(TypeWebRTCSignal, ev.Type)

	out := Event{Type: TypeWebRTCSignal, Signal: ev.Signal, User: "alice"}
	data, err := json.Marshal(out)
	req.NoError(err)
	req.JSONEq(`{"type":"webrtc_signal","signal":{"sdp":"offer","candidates":[1,2,3]},"user":"alice"}`, string(data))
}

func TestEvent_MarshalOmitsEmptyFields(t *testing.T) {
	req := require.New(t)
	data, err := json.Marshal(Event{Type: TypeUserJoin, User: AnonymousUser})
	req.NoError(err)
	req.JSONEq(`{"type":"user_join","user":"Anonymous"}`, string(data))
}

func TestEvent_UnknownOrMissingType(t *testing.T) {
	req := require.New(t)

	var ev Event
	req.NoError(json.Unmarshal([]byte(`{"message":"hi"}`), &ev))
	req.Empty(ev.Type)

	req.NoError(json.Unmarshal([]byte(`{"type":"bogus","extra":42}`), &ev))
	req.Equal("bogus", ev.Type)
}
