// Package lists downloads remote blocklists and classifies their entries.
//
// A blocklist is plain text, one entry per line. Lines starting with '#' and
// blank lines are ignored. Remaining lines are routed to an address family
// by shape (four dot-separated numeric groups for IPv4, hex-and-colon for
// IPv6, both with an optional /prefix); everything else is dropped with a
// warning, or resolved via DNS when the source opts into resolve_hostnames.
//
// Classification is deliberately permissive: the firewall engine is the
// authority on address validity and rejects malformed elements at apply
// time, which is a per-entry failure rather than a fatal one.
package lists
