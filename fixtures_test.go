package binlog

import "encoding/binary"

// fixtureEvent is a tiny builder for synthetic events in tests: real
// binlog files are awkward to hand-construct byte by byte, so tests
// build just enough framing to exercise one decoder at a time.
type fixtureEvent struct {
	eventType EventType
	body      []byte
}

// buildFile assembles a minimal binlog file: the 4-byte magic followed
// by each event's 19-byte header and body, with next_event_position
// computed to chain them in order.
func buildFile(events ...fixtureEvent) []byte {
	buf := append([]byte(nil), magic[:]...)
	cursor := uint32(len(magic))
	offsets := make([]uint32, len(events))
	for i, e := range events {
		offsets[i] = cursor
		cursor += headerSize + uint32(len(e.body))
	}
	for i, e := range events {
		next := offsets[i] + headerSize + uint32(len(e.body))
		header := make([]byte, headerSize)
		binary.LittleEndian.PutUint32(header[0:4], 0)       // timestamp
		header[4] = byte(e.eventType)                        // type code
		binary.LittleEndian.PutUint32(header[5:9], 1)         // server id
		binary.LittleEndian.PutUint32(header[9:13], headerSize+uint32(len(e.body)))
		binary.LittleEndian.PutUint32(header[13:17], next)
		binary.LittleEndian.PutUint16(header[17:19], 0)
		buf = append(buf, header...)
		buf = append(buf, e.body...)
	}
	return buf
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func be(v uint64, n int) []byte {
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
