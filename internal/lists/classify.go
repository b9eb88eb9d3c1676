package lists

import (
	"regexp"

	"github.com/nftblock/nftblock/internal/config"
)

// Shape-based family detection. Source feeds are untrusted text, so the goal
// here is fast routing of entries to the right address family, not RFC
// validation. The enforcement engine performs the authoritative validation
// and rejects malformed entries at apply time.
var (
	ipv4Regexp = regexp.MustCompile(`^[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}(/[0-9]{1,3})?$`)
	ipv6Regexp = regexp.MustCompile(`^[0-9a-fA-F:]*:[0-9a-fA-F:]*(/[0-9]{1,3})?$`)
)

// Classify determines the address family of a single list entry.
// It accepts an address with an optional /prefix suffix and returns
// FamilyInvalid for anything that matches neither shape.
func Classify(entry string) config.Family {
	if ipv4Regexp.MatchString(entry) {
		return config.FamilyIPv4
	}
	if ipv6Regexp.MatchString(entry) {
		return config.FamilyIPv6
	}
	return config.FamilyInvalid
}
