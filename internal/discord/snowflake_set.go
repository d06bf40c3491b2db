package discord

import "pkg.mon.icu/kioku/internal/state/model"

// snowflakeSet is a simple map-based set of unique Snowflake IDs.
type snowflakeSet struct {
	backingMap map[model.Snowflake]struct{}
}

// newSnowflakeSet creates a new snowflakeSet from the specified slice of IDs.
func newSnowflakeSet(s []model.Snowflake) *snowflakeSet {
	set := &snowflakeSet{make(map[model.Snowflake]struct{}, len(s))}
	for _, i := range s {
		set.backingMap[i] = struct{}{}
	}
	return set
}

// Contains checks if this snowflakeSet contains the specified ID.
func (s *snowflakeSet) Contains(i model.Snowflake) bool {
	_, exists := s.backingMap[i]
	return exists
}

// Empty reports whether the set has no elements.
func (s *snowflakeSet) Empty() bool {
	return len(s.backingMap) == 0
}
