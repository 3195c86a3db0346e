package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyNamespaces(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "login:alice", LoginKey("alice"))
	assert.Equal(t, "user:42", UserKey(42))
	assert.Equal(t, "posts:latest", PostsKey(PostsCursorLatest))
	assert.Equal(t, "posts:cursor:2025-06-01T12:00:00Z", PostsKey("cursor:2025-06-01T12:00:00Z"))
	assert.Equal(t, "user_list:alice", UserListKey("alice"))
	assert.Equal(t, "image:7", ImageKey(7))
}
