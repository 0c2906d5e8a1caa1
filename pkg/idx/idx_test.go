package idx_test

import (
	"testing"
	"time"

	"github.com/cynit/hub/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.NotEmpty(t, id.String())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
	require.False(t, id.IsZero())
}

func TestParseRejectsGarbage(t *testing.T) {
	// Session directories are named after these, so anything that isn't a
	// strict ULID has to be rejected.
	for _, bad := range []string{"", "   ", "../../../etc", "not-a-ulid"} {
		_, err := idx.Parse(bad)
		require.ErrorIs(t, err, idx.ErrInvalid, "input %q", bad)
	}
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	id := idx.NewAt(tm)

	require.WithinDuration(t, tm, id.Time(), time.Millisecond)
}

func TestMustParse(t *testing.T) {
	id := idx.MustParse("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV") // any valid ULID
	require.False(t, id.IsZero())
}
