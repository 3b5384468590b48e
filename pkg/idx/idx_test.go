package idx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrflowhq/hrflow/pkg/idx"
)

func TestNewProducesSortableUniqueIDs(t *testing.T) {
	prev := idx.New()
	for range 100 {
		next := idx.New()
		require.NotEqual(t, prev, next)
		require.Less(t, prev.String(), next.String())
		prev = next
	}
}

func TestParse(t *testing.T) {
	id := idx.New()

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = idx.Parse("")
	require.ErrorIs(t, err, idx.ErrInvalid)

	_, err = idx.Parse("not-a-ulid")
	require.ErrorIs(t, err, idx.ErrInvalid)
}

func TestMustParsePanicsOnInvalid(t *testing.T) {
	require.Panics(t, func() { idx.MustParse("nope") })
}

func TestTimeRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := idx.NewAt(at)
	require.Equal(t, at, id.Time())
}

func TestIsZero(t *testing.T) {
	require.True(t, idx.Zero.IsZero())
	require.False(t, idx.New().IsZero())
	require.Equal(t, time.Time{}, idx.Zero.Time())
}
