package steam

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultBaseURL is the Steam community origin profile pages live under.
const DefaultBaseURL = "https://steamcommunity.com"

// ErrBadProfileURL is returned for links that are not canonical SteamID64
// profile URLs. Vanity URLs (/id/<name>) are intentionally rejected.
var ErrBadProfileURL = errors.New("steam: not a steamcommunity profile link")

var (
	profileURLRe = regexp.MustCompile(`^https?://steamcommunity\.com/profiles/(\d{17})/?$`)
	profileIDRe  = regexp.MustCompile(`^\d{17}$`)
)

// ParseProfileURL extracts the 17-digit SteamID64 from a profile link.
func ParseProfileURL(raw string) (string, error) {
	m := profileURLRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", ErrBadProfileURL
	}
	return m[1], nil
}

// ValidProfileID reports whether s looks like a SteamID64.
func ValidProfileID(s string) bool {
	return profileIDRe.MatchString(s)
}

// ProfileURL builds the canonical profile URL for a SteamID64.
func ProfileURL(targetID string) string {
	return fmt.Sprintf("%s/profiles/%s", DefaultBaseURL, targetID)
}
