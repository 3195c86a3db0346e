package cache

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isu-photo-board/internal/model"
)

func TestLoginRecordRoundTrip(t *testing.T) {
	t.Parallel()

	user := model.User{ID: 7, AccountName: "alice", Passhash: "deadbeef"}
	raw, err := json.Marshal(NewLoginRecord(&user))
	require.NoError(t, err)

	// The user model keeps its hash out of JSON; the record carries it
	// alongside the row so a hit can replay the credential check.
	var rec LoginRecord
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Empty(t, rec.User.Passhash)
	assert.Equal(t, "deadbeef", rec.Passhash)

	restored := rec.Resolve()
	assert.Equal(t, user.ID, restored.ID)
	assert.Equal(t, "alice", restored.AccountName)
	assert.Equal(t, "deadbeef", restored.Passhash)
}
