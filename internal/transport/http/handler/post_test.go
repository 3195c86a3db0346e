package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISO8601(t *testing.T) {
	t.Parallel()

	got, err := parseISO8601("2025-06-01T12:34:56")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 34, 56, 0, time.Local), got)

	// Timezone suffixes are ignored, matching the feed cursor contract.
	got, err = parseISO8601("2025-06-01T12:34:56+09:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 34, 56, 0, time.Local), got)

	_, err = parseISO8601("not-a-timestamp")
	assert.Error(t, err)

	_, err = parseISO8601("")
	assert.Error(t, err)
}
