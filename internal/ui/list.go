package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/pixelpusher829/jammming/internal/models"
)

var (
	_ list.Item = resultItem{}
	_ list.Item = draftItem{}
)

// resultItem wraps a search hit to implement [list.Item]. The added flag
// marks tracks already present in the draft.
type resultItem struct {
	track models.Track
	added bool
}

func (i resultItem) FilterValue() string { return i.track.Title }
func (i resultItem) Title() string {
	if i.added {
		return fmt.Sprintf("✓ %s", i.track.Title)
	}
	return i.track.Title
}
func (i resultItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}

// draftItem wraps a draft track to implement [list.Item].
type draftItem struct {
	track models.Track
}

func (i draftItem) FilterValue() string { return i.track.Title }
func (i draftItem) Title() string       { return i.track.Title }
func (i draftItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}
