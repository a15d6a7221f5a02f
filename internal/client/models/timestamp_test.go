package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	local := func(y int, m time.Month, d, h, min, s, ns int) time.Time {
		return time.Date(y, m, d, h, min, s, ns, time.Local)
	}

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{name: "local with fraction", in: `"2025-01-02T03:04:05.123456"`, want: local(2025, 1, 2, 3, 4, 5, 123456000)},
		{name: "local seconds", in: `"2025-01-02T03:04:05"`, want: local(2025, 1, 2, 3, 4, 5, 0)},
		{name: "rfc3339", in: `"2025-01-02T03:04:05Z"`, want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "array", in: `[2025,1,2,3,4,5]`, want: local(2025, 1, 2, 3, 4, 5, 0)},
		{name: "null", in: `null`, want: time.Time{}},
		{name: "empty string", in: `""`, want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v want %v", ts.Time, tt.want)
		})
	}
}

func TestTimestamp_UnmarshalJSON_Invalid(t *testing.T) {
	var ts Timestamp
	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	require.Error(t, json.Unmarshal([]byte(`true`), &ts))
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	ts := Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)}
	b, err = json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-02T03:04:05"`, string(b))
}
