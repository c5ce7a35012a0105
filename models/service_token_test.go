package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantUID     Identity
		wantNumeric bool
		wantValue   uint32
	}{
		{"integer", `42`, "42", true, 42},
		{"integral float", `42.0`, "42", true, 42},
		{"exponent", `1e3`, "1000", true, 1000},
		{"zero", `0`, "0", true, 0},
		{"max uint32", `4294967295`, "4294967295", true, 4294967295},
		{"numeric string", `"42"`, "42", true, 42},
		{"fraction", `4.5`, "4.5", false, 0},
		{"negative", `-1`, "-1", false, 0},
		{"above uint32", `4294967296`, "4294967296", false, 0},
		{"handle", `"user-42"`, "user-42", false, 0},
		{"null", `null`, "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req RtcTokenRequest
			require.NoError(t, json.Unmarshal([]byte(`{"channelName":"r","uid":`+tt.body+`}`), &req))

			assert.Equal(t, tt.wantUID, req.UID)
			n, ok := req.UID.Numeric()
			assert.Equal(t, tt.wantNumeric, ok)
			assert.Equal(t, tt.wantValue, n)
		})
	}
}

func TestIdentity_UnmarshalJSONRejectsOtherTypes(t *testing.T) {
	for _, body := range []string{`true`, `{}`, `[1]`} {
		var req RtcTokenRequest
		assert.Error(t, json.Unmarshal([]byte(`{"channelName":"r","uid":`+body+`}`), &req), body)
	}
}

func TestRtcTokenRequest_Validate(t *testing.T) {
	assert.NoError(t, (&RtcTokenRequest{ChannelName: "r", UID: "0"}).Validate())
	assert.Error(t, (&RtcTokenRequest{ChannelName: "r"}).Validate())
	assert.Error(t, (&RtcTokenRequest{UID: "42"}).Validate())
}
