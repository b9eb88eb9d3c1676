package lists

import (
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/miekg/dns"
)

var dnsNameRegexp = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,62}(\.[a-zA-Z0-9][a-zA-Z0-9-]{0,62})+\.?$`)

// IsDNSName reports whether the entry looks like a resolvable DNS name.
// Entries that classify as an address family never reach this check.
func IsDNSName(entry string) bool {
	return len(entry) <= 253 && dnsNameRegexp.MatchString(entry)
}

const (
	defaultDNSPort     = "53"
	resolveTimeout     = 3 * time.Second
	maxAnswersPerQuery = 64
)

// Resolver resolves hostnames found in blocklists to A/AAAA records against
// a single configured DNS server.
type Resolver struct {
	address string
	client  *dns.Client
}

// NewResolver creates a Resolver for the given server ("host" or "host:port").
func NewResolver(server string) *Resolver {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, defaultDNSPort)
	}

	return &Resolver{
		address: server,
		client: &dns.Client{
			Net:     "udp",
			Timeout: resolveTimeout,
		},
	}
}

// Resolve queries A and AAAA records for name and returns the addresses as
// strings, grouped per family.
func (r *Resolver) Resolve(name string) (v4 []string, v6 []string, err error) {
	fqdn := dns.Fqdn(name)

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(fqdn, qtype)
		msg.RecursionDesired = true

		resp, _, err := r.client.Exchange(msg, r.address)
		if err != nil {
			return nil, nil, fmt.Errorf("query %s %s: %v", name, dns.TypeToString[qtype], err)
		}
		if resp.Rcode != dns.RcodeSuccess {
			return nil, nil, fmt.Errorf("query %s %s: %s", name, dns.TypeToString[qtype], dns.RcodeToString[resp.Rcode])
		}

		for i, rr := range resp.Answer {
			if i >= maxAnswersPerQuery {
				break
			}
			switch record := rr.(type) {
			case *dns.A:
				v4 = append(v4, record.A.String())
			case *dns.AAAA:
				v6 = append(v6, record.AAAA.String())
			}
		}
	}

	return v4, v6, nil
}
