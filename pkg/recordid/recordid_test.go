package recordid

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsValidAndUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := New()
		require.True(t, Valid(id), id)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	got, err := Time(NewAt(at))
	require.NoError(t, err)
	assert.Equal(t, at, got)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("65F0C0FFEE0000000000BEEF"))
	assert.False(t, Valid("65f0c0ffee0000000000bee"))
	assert.False(t, Valid("65f0c0ffee0000000000beeg"))
	assert.False(t, Valid(strings.Repeat("a", 25)))
	assert.False(t, Valid("MIIT_202500001"))
}
