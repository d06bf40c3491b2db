package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pkg.mon.icu/kioku/internal/util"
)

func TestParseSnowflake(t *testing.T) {
	t.Parallel()

	s, err := util.ParseSnowflake("175928847299117063")
	require.NoError(t, err)
	require.Equal(t, uint64(175928847299117063), s)
	require.Equal(t, "175928847299117063", util.FormatSnowflake(s))

	_, err = util.ParseSnowflake("not a number")
	require.Error(t, err)
	_, err = util.ParseSnowflake("-1")
	require.Error(t, err)

	require.Panics(t, func() { util.MustParseSnowflake("x") })
}

func TestSnowflakeFields(t *testing.T) {
	t.Parallel()

	// Worked example from the upstream Snowflake documentation.
	const s = uint64(175928847299117063)

	require.Equal(t,
		time.Date(2016, 4, 30, 11, 18, 25, 796_000_000, time.UTC),
		util.SnowflakeTime(s).UTC())
	require.Equal(t, uint8(1), util.SnowflakeWorker(s))
	require.Equal(t, uint8(0), util.SnowflakeProcess(s))
	require.Equal(t, uint16(7), util.SnowflakeIncrement(s))
}
