package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Log(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf)
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	l.Log(context.Background(), ActionUserDelete, "1", "9", errors.New("Failed to delete doctor"))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "user.delete", got["action"])
	assert.Equal(t, "1", got["user"])
	assert.Equal(t, "9", got["target"])
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "Failed to delete doctor", got["error"])
	assert.Equal(t, "2024-01-02T03:04:05Z", got["timestamp"])
}

func TestLogger_Nil(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Log(context.Background(), ActionLogout, "", "", nil) })
}
