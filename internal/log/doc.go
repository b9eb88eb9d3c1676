// Package log provides simple leveled logging for nftblock.
//
// It is a lightweight printf-style logger with colored level prefixes
// (DEBUG, INFO, WARN, ERROR). Debug messages are only emitted in verbose
// mode; warnings and errors go to stderr so that stdout stays usable for
// machine-readable command output.
package log
