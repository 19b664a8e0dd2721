package eventlog

import (
	"encoding/binary"
	"hash/crc32"
)

// Record encoding: varint headerLen | header | payload | crc32c(header|payload)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func checksum(header, payload []byte) uint32 {
	crc := crc32.Update(0, castagnoli, header)
	return crc32.Update(crc, castagnoli, payload)
}

func EncodeRecord(header, payload []byte) []byte {
	out := make([]byte, 0, binary.MaxVarintLen64+len(header)+len(payload)+4)
	out = binary.AppendUvarint(out, uint64(len(header)))
	out = append(out, header...)
	out = append(out, payload...)
	return binary.BigEndian.AppendUint32(out, checksum(header, payload))
}

type Decoded struct {
	Header  []byte
	Payload []byte
}

// DecodeRecord validates framing and checksum and returns copies of the
// header and payload.
func DecodeRecord(b []byte) (Decoded, bool) {
	if len(b) < 1+4 {
		return Decoded{}, false
	}
	hlen, n := binary.Uvarint(b)
	if n <= 0 || hlen > uint64(len(b)) {
		return Decoded{}, false
	}
	if n+int(hlen)+4 > len(b) {
		return Decoded{}, false
	}
	header := b[n : n+int(hlen)]
	payload := b[n+int(hlen) : len(b)-4]
	if checksum(header, payload) != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return Decoded{}, false
	}
	return Decoded{Header: append([]byte(nil), header...), Payload: append([]byte(nil), payload...)}, true
}
