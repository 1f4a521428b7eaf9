package domain

// Suggestions holds the autocomplete lists derived from a user's ride
// history, in history order (most recent first). Joined multi-leg summary
// strings are never included; they are derived data, not reusable names.
type Suggestions struct {
	Companies []string `json:"companies"`
	Lines     []string `json:"lines"`
	Services  []string `json:"services"`
	Stations  []string `json:"stations"`
}
