package tasks

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadDraft Phase = iota
	ResolvePlaylist
	CreatePlaylist
	WriteTracks
	Rename
	Persist
)

func (p Phase) String() string {
	switch p {
	case LoadDraft:
		return "load_draft"
	case ResolvePlaylist:
		return "resolve_playlist"
	case CreatePlaylist:
		return "create_playlist"
	case WriteTracks:
		return "write_tracks"
	case Rename:
		return "rename"
	case Persist:
		return "persist"
	default:
		return "unknown"
	}
}
