// Package feeder moves block payloads into an ordered log and replays them.
//
// A Producer clears the log, walks the blocks of one size and appends every
// subblock followed by the block's aggregate, one entry per payload. A
// Consumer performs a blocking read from the log and reports the composite
// key and payload length of each entry in arrival order.
//
// Every entry carries exactly one field: its name is the composite key
// "{block}-{index}" and its value is the raw payload.
package feeder
