package lists

import (
	"strings"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/log"
)

// Result holds the classified entries of one source, per address family.
type Result struct {
	IPv4 []string
	IPv6 []string
	// Invalid counts lines that matched neither family shape.
	Invalid int
	// Resolved counts hostnames turned into addresses (resolve_hostnames only).
	Resolved int
}

// Loader downloads one source and classifies every usable line into
// per-family entry slices.
type Loader struct {
	fetcher  *Fetcher
	resolver *Resolver
}

// NewLoader combines a Fetcher with an optional hostname Resolver
// (nil disables hostname resolution entirely).
func NewLoader(fetcher *Fetcher, resolver *Resolver) *Loader {
	return &Loader{fetcher: fetcher, resolver: resolver}
}

// Load fetches one source and returns its classified entries. Comment lines
// (first character '#') and blank lines are skipped. Invalid entries are
// logged as warnings and dropped; a fetch failure is returned as
// *UnreachableError and means the whole source yielded nothing.
func (l *Loader) Load(src *config.SourceConfig) (*Result, error) {
	text, err := l.fetcher.Fetch(src.URL)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	// Lines may be separated by any combination of CR and LF.
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\r' || r == '\n' }) {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}

		switch Classify(line) {
		case config.FamilyIPv4:
			result.IPv4 = append(result.IPv4, line)
		case config.FamilyIPv6:
			result.IPv6 = append(result.IPv6, line)
		default:
			if l.resolver != nil && src.ResolveHostnames && IsDNSName(line) {
				l.resolveInto(src, line, result)
				continue
			}
			log.Warnf("Source \"%s\": invalid entry skipped: %s", src.Name, line)
			result.Invalid++
		}
	}

	return result, nil
}

func (l *Loader) resolveInto(src *config.SourceConfig, name string, result *Result) {
	v4, v6, err := l.resolver.Resolve(name)
	if err != nil {
		log.Warnf("Source \"%s\": failed to resolve %s: %v", src.Name, name, err)
		result.Invalid++
		return
	}
	result.IPv4 = append(result.IPv4, v4...)
	result.IPv6 = append(result.IPv6, v6...)
	result.Resolved++
}
