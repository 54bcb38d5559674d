package lockfile_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pycairn/cairn/internal/core/lockfile"
)

func TestParseHash(t *testing.T) {
	t.Parallel()
	h, err := lockfile.ParseHash("sha256:deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "sha256", h.Algorithm)
	assert.Equal(t, "deadbeef", h.Digest)
	assert.Equal(t, "sha256:deadbeef", h.String())
}

func TestParseHash_EmptyDigest(t *testing.T) {
	t.Parallel()
	h, err := lockfile.ParseHash("sha256:")
	require.NoError(t, err)
	assert.Equal(t, "sha256", h.Algorithm)
	assert.Empty(t, h.Digest)
}

func TestParseHash_MissingSeparator(t *testing.T) {
	t.Parallel()
	_, err := lockfile.ParseHash("sha256deadbeef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed hash")
}

func TestHashes_Dedup(t *testing.T) {
	t.Parallel()
	data := `[
		"sha256:54a07c09c586b0e4c619f02a5e94e36619da8e2b",
		"sha256:40523d2efb60523e113b44602298f0960e900388",
		"sha256:54a07c09c586b0e4c619f02a5e94e36619da8e2b"
	]`

	var hashes lockfile.Hashes
	require.NoError(t, json.Unmarshal([]byte(data), &hashes))
	assert.Equal(t, 2, hashes.Len(), "repeated entries should collapse")
	assert.True(t, hashes.Contains(lockfile.Hash{Algorithm: "sha256", Digest: "54a07c09c586b0e4c619f02a5e94e36619da8e2b"}))
	assert.True(t, hashes.Contains(lockfile.Hash{Algorithm: "sha256", Digest: "40523d2efb60523e113b44602298f0960e900388"}))
	assert.False(t, hashes.Contains(lockfile.Hash{Algorithm: "md5", Digest: "54a07c09c586b0e4c619f02a5e94e36619da8e2b"}))
}

func TestHashes_ListSorted(t *testing.T) {
	t.Parallel()
	hashes := lockfile.NewHashes(
		lockfile.Hash{Algorithm: "sha256", Digest: "bbb"},
		lockfile.Hash{Algorithm: "sha256", Digest: "aaa"},
		lockfile.Hash{Algorithm: "md5", Digest: "zzz"},
	)
	list := hashes.List()
	require.Len(t, list, 3)
	assert.Equal(t, "md5:zzz", list[0].String())
	assert.Equal(t, "sha256:aaa", list[1].String())
	assert.Equal(t, "sha256:bbb", list[2].String())
}

func TestHashes_UnmarshalRejectsMalformedEntry(t *testing.T) {
	t.Parallel()
	var hashes lockfile.Hashes
	err := json.Unmarshal([]byte(`["sha256 deadbeef"]`), &hashes)
	require.Error(t, err)
}
