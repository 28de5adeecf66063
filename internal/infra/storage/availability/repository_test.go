package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateArg(t *testing.T) {
	t.Run("positive offset midnight keeps its calendar date", func(t *testing.T) {
		loc, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)

		midnight := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
		require.Equal(t, "2026-03-08", midnight.UTC().Format("2006-01-02"), "the UTC instant falls on the previous day")
		assert.Equal(t, "2026-03-09", dateArg(midnight))
	})

	t.Run("negative offset midnight keeps its calendar date", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)

		midnight := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
		assert.Equal(t, "2026-03-09", dateArg(midnight))
	})

	t.Run("utc midnight", func(t *testing.T) {
		midnight := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, "2026-03-09", dateArg(midnight))
	})
}
