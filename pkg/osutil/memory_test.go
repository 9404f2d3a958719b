package osutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemoryLimit(t *testing.T) {
	limit, ok := parseMemoryLimit("536870912\n")
	assert.True(t, ok)
	assert.EqualValues(t, 536870912, limit)

	for _, raw := range []string{"max\n", "9223372036854771712\n", "", "0", "garbage"} {
		_, ok := parseMemoryLimit(raw)
		assert.False(t, ok, raw)
	}
}

func TestTotalMemory(t *testing.T) {
	dir := t.TempDir()

	unlimited := filepath.Join(dir, "memory.max")
	require.NoError(t, os.WriteFile(unlimited, []byte("max\n"), 0600))

	limited := filepath.Join(dir, "memory.limit_in_bytes")
	require.NoError(t, os.WriteFile(limited, []byte("1024\n"), 0600))

	missing := filepath.Join(dir, "missing")

	assert.EqualValues(t, 4096, totalMemory(4096, []string{missing}))
	assert.EqualValues(t, 4096, totalMemory(4096, []string{unlimited}))
	assert.EqualValues(t, 1024, totalMemory(4096, []string{unlimited, limited}))
	assert.EqualValues(t, 512, totalMemory(512, []string{limited}))

	assert.NotZero(t, GetTotalMemory())
}
