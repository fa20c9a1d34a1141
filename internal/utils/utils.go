package utils

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	featPattern     = regexp.MustCompile(`feat\. (.+?)[)\]]`)
)

// IsUsername reports whether nickname is a non-empty alphanumeric string of
// at most maxLen characters.
func IsUsername(nickname string, maxLen int) bool {
	if len(nickname) == 0 || len(nickname) > maxLen {
		return false
	}
	return usernamePattern.MatchString(nickname)
}

// ExtractFeat returns the secondary artist of a "(feat. X)" or "[feat. X]"
// title, or "" when the title has none. The title is expected lowercased.
func ExtractFeat(title string) string {
	m := featPattern.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return m[1]
}

// KickNotice builds the line shown to a kicked player.
func KickNotice(executor, why string) string {
	var b strings.Builder
	b.WriteString("you have been kicked by ")
	b.WriteString(executor)
	if why != "" {
		b.WriteString(" (")
		b.WriteString(why)
		b.WriteString(")")
	}
	b.WriteString(".")
	return b.String()
}

// BanRemaining formats the time left on a ban in whole minutes, rounded.
func BanRemaining(ttl time.Duration) string {
	minutes := int(math.Round(ttl.Minutes()))
	switch {
	case minutes == 0:
		return "less than a minute"
	case minutes == 1:
		return "1 minute"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
