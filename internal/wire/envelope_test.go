package wire

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewRequest("chat_turn", map[string]string{"text": "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, env.ID)
	require.NotZero(t, env.Timestamp)

	data, err := env.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, env.ID, got.ID)
	assert.Equal(t, "chat_turn", got.Type)
	assert.JSONEq(t, `{"text":"hello"}`, string(got.Data))
}

func TestNewOmitsID(t *testing.T) {
	env, err := New("audio_control", nil)
	require.NoError(t, err)
	assert.Empty(t, env.ID)

	data, err := env.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
	assert.NotContains(t, string(data), `"data"`)
}

func TestRequestIDsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		_ = i
		env, err := NewRequest("chat_turn", nil)
		require.NoError(t, err)
		_, dup := seen[env.ID]
		require.False(t, dup, "duplicate id %s", env.ID)
		seen[env.ID] = struct{}{}
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"missing type", `{"id":"abc","timestamp":123}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			require.Error(t, err)

			var perr *ProtocolError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, len(tt.data), perr.Size)
		})
	}
}

func TestHeartbeat(t *testing.T) {
	env := Heartbeat()
	assert.Equal(t, TypeHeartbeat, env.Type)
	assert.Empty(t, env.ID)
	assert.NotZero(t, env.Timestamp)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry("chat_turn", "audio_control")

	assert.True(t, r.Known("chat_turn"))
	assert.True(t, r.Known(TypeHeartbeat))
	assert.False(t, r.Known("unknown"))

	r.Register("transcript")
	assert.True(t, r.Known("transcript"))

	var nilReg *Registry
	assert.True(t, nilReg.Known("anything"))
}

func TestDecodeOpaqueData(t *testing.T) {
	raw := `{"type":"transcript","timestamp":1712345678901,"data":{"nested":{"deep":[1,2,3]}}}`

	env, err := Decode([]byte(raw))
	require.NoError(t, err)

	// Data passes through untouched.
	var payload struct {
		Nested json.RawMessage `json:"nested"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.JSONEq(t, `{"deep":[1,2,3]}`, string(payload.Nested))
}
