// Package blockfeeder contains the Cobra commands of the blockfeeder CLI: `write`
// moves one block set into the log, `read` replays it.
package blockfeeder
