package steam

import "strings"

// Status is the two-valued visibility state of a profile.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Classify maps the raw status header text to a Status. A profile counts as
// online when the text mentions being in-game or online; everything else,
// including an empty header, is offline. Note "Currently Offline" does not
// contain the substring "online".
func Classify(raw string) Status {
	s := strings.ToLower(raw)
	if strings.Contains(s, "in-game") || strings.Contains(s, "online") {
		return StatusOnline
	}
	return StatusOffline
}
