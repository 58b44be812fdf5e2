// package repositories provides persistence layer implementations for
// local builder state.
//
// [DraftRepository] stores playlist drafts assembled before a save, letting
// an in-progress playlist survive the login round trip and process
// restarts. [TrackCache] deduplicates catalog search results by provider
// track ID so repeated queries resolve locally.
package repositories

import (
	"database/sql"
	"time"
)

// scanTime parses the timestamp strings sqlite hands back for
// CURRENT_TIMESTAMP columns.
func scanTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// exists reports whether a query returned a row.
func exists(err error) (bool, error) {
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
