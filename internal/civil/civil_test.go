package civil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("08:15")
	require.NoError(t, err)
	require.Equal(t, TimeOfDay(8*60+15), tod)
	require.Equal(t, "08:15", tod.String())

	_, err = ParseTimeOfDay("24:00")
	require.Error(t, err)
	_, err = ParseTimeOfDay("nope")
	require.Error(t, err)
}

func TestTimeOfDayAddAndClamp(t *testing.T) {
	tod, err := ParseTimeOfDay("00:05")
	require.NoError(t, err)
	early := tod.Add(-15)
	require.True(t, early < 0)
	require.Equal(t, "00:00", early.String())

	late, err := ParseTimeOfDay("23:55")
	require.NoError(t, err)
	require.Equal(t, "23:59", late.Add(15).String())
}

func TestDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	require.Equal(t, Date{Year: 2025, Month: time.March, Day: 10}, d)
	require.Equal(t, "2025-03-10", d.String())
}

func TestSplitTimestamp(t *testing.T) {
	// Monday 07:50.
	now := time.Date(2025, time.March, 10, 7, 50, 0, 0, time.UTC)
	require.Equal(t, Date{Year: 2025, Month: time.March, Day: 10}, DateOf(now))
	require.Equal(t, Monday, DayOf(now))
	require.Equal(t, "07:50", TimeOfDayOf(now).String())
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("Friday")
	require.NoError(t, err)
	require.Equal(t, Friday, d)

	_, err = ParseDay("friday")
	require.Error(t, err)
}
