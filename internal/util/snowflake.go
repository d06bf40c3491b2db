package util

import (
	"fmt"
	"strconv"
	"time"
)

// discordEpoch is the first second of 2015 in Unix milliseconds. Snowflake
// timestamps are measured from it rather than from the Unix epoch.
const discordEpoch = 1420070400000

// ParseSnowflake parses a decimal Snowflake ID string.
func ParseSnowflake(s string) (uint64, error) {
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse Snowflake ID string: %w", err)
	}
	return val, nil
}

func MustParseSnowflake(s string) uint64 {
	val, err := ParseSnowflake(s)
	if err != nil {
		panic(err)
	}
	return val
}

func FormatSnowflake(s uint64) string {
	return strconv.FormatUint(s, 10)
}

// SnowflakeTime extracts the creation time encoded in the top 42 bits of a
// Snowflake.
func SnowflakeTime(s uint64) time.Time {
	ms := int64(s>>22) + discordEpoch
	return time.UnixMilli(ms)
}

// SnowflakeWorker extracts the internal worker ID (bits 17-21).
func SnowflakeWorker(s uint64) uint8 {
	return uint8((s & 0x3E0000) >> 17)
}

// SnowflakeProcess extracts the internal process ID (bits 12-16).
func SnowflakeProcess(s uint64) uint8 {
	return uint8((s & 0x1F000) >> 12)
}

// SnowflakeIncrement extracts the per-process increment (bits 0-11).
func SnowflakeIncrement(s uint64) uint16 {
	return uint16(s & 0xFFF)
}
