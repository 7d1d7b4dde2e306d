package utils

import (
	"slices"

	"github.com/nats-io/nats.go"
)

// StreamConfigEqual reports whether two stream configs agree on the fields this service manages.
func StreamConfigEqual(a, b nats.StreamConfig) bool {
	return a.Name == b.Name &&
		a.Retention == b.Retention &&
		a.MaxAge == b.MaxAge &&
		a.Storage == b.Storage &&
		a.Duplicates == b.Duplicates &&
		slices.Equal(a.Subjects, b.Subjects)
}
