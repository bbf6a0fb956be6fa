package utils

import "time"

// FromUnixMilli converts an epoch-milliseconds value to a UTC time.
// Zero or negative values yield nil.
func FromUnixMilli(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}
