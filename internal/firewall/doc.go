// Package firewall manages the enforcement side of the blacklist: the
// idempotent firewall topology (table, chains, sets, drop rules) and the
// batched population of the per-family enforcement sets.
//
// Two backends implement the same Backend interface: the primary one drives
// nftables through a typed control-plane Client (an exec wrapper around the
// nft binary in production, a recording fake in tests), and a legacy one
// drives iptables/ip6tables with ipset-backed sets for hosts without nft.
//
// Failure semantics: topology setup failures (SetupError) are fatal to a
// sync pass, per-family population failures (ApplyError) are logged and
// isolated, so a pass never leaves the host without correct topology.
package firewall
