// Package commands implements the nftblock subcommands.
package commands
