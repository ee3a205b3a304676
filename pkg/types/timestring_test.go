package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())
	assert.Equal(t, 570, ts.Minutes())

	ts, err = NewTimeStringFromString("14:05:00")
	require.NoError(t, err)
	assert.Equal(t, "14:05", ts.String())

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("abc")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := MustTimeString("23:30")

	end, err := ts.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, 24*60, end.Minutes())

	_, err = ts.AddMinutes(31)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	a := MustTimeString("10:00")
	b := MustTimeString("10:30")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.False(t, a.IsAfter(a))
}

func TestTimeString_On(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	date := time.Date(2026, 10, 15, 17, 45, 0, 0, loc)

	got := MustTimeString("08:15").On(date)
	assert.Equal(t, time.Date(2026, 10, 15, 8, 15, 0, 0, loc), got)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("08:00:00")))
	assert.Equal(t, "08:00", ts.String())

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_JSON(t *testing.T) {
	ts := MustTimeString("07:05")

	data, err := ts.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"07:05"`, string(data))

	var parsed TimeString
	require.NoError(t, parsed.UnmarshalJSON(data))
	assert.Equal(t, ts, parsed)
}
