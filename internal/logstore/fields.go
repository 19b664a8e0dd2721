package logstore

import (
	"encoding/binary"

	"github.com/WholesumNet/block-feeder/internal/fault"
)

// encodeFields splits fields into an event log record: the header carries the
// field count, each name and each value length; the payload is the values
// concatenated. A single-field entry therefore stores its value verbatim as
// the record payload.
func encodeFields(fields []Field) (header, payload []byte) {
	total := 0
	for _, f := range fields {
		total += len(f.Value)
	}
	header = binary.AppendUvarint(nil, uint64(len(fields)))
	payload = make([]byte, 0, total)
	for _, f := range fields {
		header = binary.AppendUvarint(header, uint64(len(f.Name)))
		header = append(header, f.Name...)
		header = binary.AppendUvarint(header, uint64(len(f.Value)))
		payload = append(payload, f.Value...)
	}
	return header, payload
}

func decodeFields(header, payload []byte) ([]Field, error) {
	n, w := binary.Uvarint(header)
	if w <= 0 || n > uint64(len(header)) {
		return nil, fault.Protocol(nil, "bad field count")
	}
	header = header[w:]
	fields := make([]Field, 0, n)
	for i := uint64(0); i < n; i++ {
		nameLen, w := binary.Uvarint(header)
		if w <= 0 || nameLen > uint64(len(header)-w) {
			return nil, fault.Protocol(nil, "field %d: bad name length", i)
		}
		name := string(header[w : w+int(nameLen)])
		header = header[w+int(nameLen):]
		valLen, w := binary.Uvarint(header)
		if w <= 0 || valLen > uint64(len(payload)) {
			return nil, fault.Protocol(nil, "field %d: bad value length", i)
		}
		header = header[w:]
		fields = append(fields, Field{Name: name, Value: payload[:valLen:valLen]})
		payload = payload[valLen:]
	}
	if len(header) != 0 || len(payload) != 0 {
		return nil, fault.Protocol(nil, "trailing bytes after %d fields", n)
	}
	return fields, nil
}
