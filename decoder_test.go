package binlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeAllEmptyMagicOnlyFile covers spec §8 scenario S1: a file
// containing nothing but the 4-byte magic decodes to zero events with
// no error.
func TestDecodeAllEmptyMagicOnlyFile(t *testing.T) {
	dec := NewDecoder()
	events, err := dec.DecodeAll(append([]byte(nil), magic[:]...))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecodeAllRejectsBadMagic(t *testing.T) {
	dec := NewDecoder()
	_, err := dec.DecodeAll([]byte{0x00, 0x00, 0x00, 0x00})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeAllRejectsShortEventLength(t *testing.T) {
	file := buildFile(fixtureEvent{eventType: XidEventType, body: []byte{1}})
	// Corrupt event_length (offset 4+9=13 within file, i.e. header byte 9) to something < 19.
	file[4+9] = 5
	dec := NewDecoder()
	_, err := dec.DecodeAll(file)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeAllDetectsNonAdvancingPosition(t *testing.T) {
	file := buildFile(fixtureEvent{eventType: XidEventType, body: []byte{1}})
	// Force next_event_position back to the start of this event's header.
	putLE32(file, 4+13, 4)
	dec := NewDecoder()
	_, err := dec.DecodeAll(file)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func putLE32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}

func TestDecodeXidEvent(t *testing.T) {
	file := buildFile(fixtureEvent{eventType: XidEventType, body: []byte{7}})
	dec := NewDecoder()
	events, err := dec.DecodeAll(file)
	require.NoError(t, err)
	require.Len(t, events, 1)
	xid, ok := events[0].Body.(XidEvent)
	require.True(t, ok)
	assert.Equal(t, byte(7), xid.XID)
}

func TestDecodeRotateEvent(t *testing.T) {
	body := append(le64(4), []byte("mariadb-bin.000002")...)
	body = append(body, make([]byte, 4)...) // trailing CRC
	file := buildFile(fixtureEvent{eventType: RotateEventType, body: body})
	dec := NewDecoder()
	events, err := dec.DecodeAll(file)
	require.NoError(t, err)
	re, ok := events[0].Body.(RotateEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(4), re.NextPosition)
	assert.Equal(t, "mariadb-bin.000002", re.NextFile)
}

// TestTableMapThenInsertRow covers a Table-Map/Write-Rows pair similar
// to spec §8 scenario S4: a single VARCHAR(100) column holding "hi".
func TestTableMapThenInsertRow(t *testing.T) {
	tmBody := buildTableMapBody(t, 42, "db1", "t1", []tmCol{
		{typ: TypeVarchar, meta: le16(100)},
	})
	rowBody := buildWriteRowsBody(t, 42, 1, []bool{true}, [][]byte{
		append([]byte{2}, []byte("hi")...), // 1-byte length prefix since maxLen<=255
	})

	file := buildFile(
		fixtureEvent{eventType: TableMapEventType, body: tmBody},
		fixtureEvent{eventType: WriteRowsEventType, body: rowBody},
	)
	dec := NewDecoder()
	events, err := dec.DecodeAll(file)
	require.NoError(t, err)
	require.Len(t, events, 2)

	re, ok := events[1].Body.(RowsEvent)
	require.True(t, ok)
	require.Len(t, re.After, 1)
	assert.Equal(t, "this is a String, value is `hi`", re.After[0].Values[0])
}

func TestRowsEventMissingTableMapIsFatal(t *testing.T) {
	rowBody := buildWriteRowsBody(t, 99, 1, []bool{true}, [][]byte{{0}})
	file := buildFile(fixtureEvent{eventType: WriteRowsEventType, body: rowBody})
	dec := NewDecoder()
	_, err := dec.DecodeAll(file)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTable)
}

// --- fixture builders for Table-Map / Rows events ---

type tmCol struct {
	typ  ColumnType
	meta []byte
}

func buildTableMapBody(t *testing.T, tableID uint64, db, table string, cols []tmCol) []byte {
	t.Helper()
	var b []byte
	idBytes := le64(tableID)[:6]
	b = append(b, idBytes...)
	b = append(b, 0, 0) // reserved
	b = append(b, byte(len(db)))
	b = append(b, []byte(db)...)
	b = append(b, 0)
	b = append(b, byte(len(table)))
	b = append(b, []byte(table)...)
	b = append(b, 0)
	b = append(b, byte(len(cols))) // lenenc, < 0xfb
	for _, c := range cols {
		b = append(b, byte(c.typ))
	}
	var metaBlock []byte
	for _, c := range cols {
		metaBlock = append(metaBlock, c.meta...)
	}
	b = append(b, byte(len(metaBlock)))
	b = append(b, metaBlock...)
	nullBitmap := make([]byte, bitmapSize(len(cols)))
	b = append(b, nullBitmap...)
	return b
}

func buildWriteRowsBody(t *testing.T, tableID uint64, numCols int, present []bool, values [][]byte) []byte {
	t.Helper()
	var b []byte
	b = append(b, le64(tableID)[:6]...)
	b = append(b, le16(0)...) // flags
	b = append(b, byte(numCols))
	usedBitmap := make([]byte, bitmapSize(numCols))
	for i, p := range present {
		if p {
			usedBitmap[i/8] |= 1 << uint(i%8)
		}
	}
	b = append(b, usedBitmap...)
	nullBitmap := make([]byte, bitmapSize(numCols))
	b = append(b, nullBitmap...)
	for _, v := range values {
		b = append(b, v...)
	}
	return b
}

func TestDatetime2RoundTrip(t *testing.T) {
	// 2024-06-15 13:45:30, spec §8 scenario S7.
	year, month, day := 2024, 6, 15
	hour, minute, second := 13, 45, 30
	ym := year*13 + month
	dateVal := int64(ym)<<5 | int64(day)
	timeVal := int64(hour)<<12 | int64(minute)<<6 | int64(second)
	v := dateVal<<17 | timeVal
	wire := be(uint64(v+0x8000000000), 5)

	r := newReader(wire)
	got, err := decodeDatetime2(r, Column{})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15 13:45:30", got)
}
