package idgen_test

import (
	"strings"
	"testing"

	"fulfillment/internal/adapters/out/idgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Next(t *testing.T) {
	gen, err := idgen.NewSnowflake(1)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for range 1000 {
		n := gen.Next("WV-")
		require.True(t, strings.HasPrefix(n, "WV-"), n)
		_, dup := seen[n]
		require.False(t, dup, "duplicate number %s", n)
		seen[n] = struct{}{}
	}
}

func TestNewSnowflake_RejectsNodeOutOfRange(t *testing.T) {
	_, err := idgen.NewSnowflake(4096)
	assert.Error(t, err)
}
