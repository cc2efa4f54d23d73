package binlog

// Row flag bits (spec §3).
const (
	RowFlagEndOfStatement     uint16 = 0x0001
	RowFlagNoForeignKeyChk    uint16 = 0x0002
	RowFlagNoUniqueChecks     uint16 = 0x0004
	RowFlagRowsComplete       uint16 = 0x0008
	RowFlagNoCheckConstraints uint16 = 0x0010
)

// RowImage is one decoded row: Values has exactly N entries, one per
// table column in order, nil wherever the null bitmap marked that
// column null (spec §3/§4.6). The columns-used bitmap is consumed to
// keep the reader's offset correct but does not affect which columns
// are decoded.
type RowImage struct {
	Values []interface{}
}

// RowsEvent (types 23/24/25) carries the decoded before/after row
// images for an INSERT, UPDATE, or DELETE (spec §3/§4.3).
type RowsEvent struct {
	EventType EventType
	TableID   uint64
	Flags     uint16
	TableMap  *TableMapEvent
	// Before is populated for UPDATE (pre-image) and DELETE; After is
	// populated for UPDATE (post-image) and INSERT.
	Before []RowImage
	After  []RowImage
}

func (d *Decoder) decodeRowsEvent(b []byte, eventType EventType, reg *tableMapRegistry) (RowsEvent, error) {
	r := newReader(b)
	e := RowsEvent{EventType: eventType}
	e.TableID = r.int6()
	e.Flags = r.int2()
	if r.err != nil {
		return RowsEvent{}, r.err
	}

	tme, err := reg.get(e.TableID)
	if err != nil {
		return RowsEvent{}, err
	}
	e.TableMap = tme

	numCols := int(r.lenenc())
	if r.err != nil {
		return RowsEvent{}, r.err
	}
	// columns-used (and, for UPDATE, columns-used-for-update) bitmaps
	// are consumed only to advance past them on the wire; per
	// original_source/src/service.rs:494-523 they gate nothing about
	// how the null bitmap or column data are sized or iterated.
	r.take(bitmapSize(numCols))
	if eventType == UpdateRowsEventType {
		r.take(bitmapSize(numCols))
	}
	if r.err != nil {
		return RowsEvent{}, r.err
	}

	readImage := func() (RowImage, error) {
		nullBitmap := r.take(bitmapSize(numCols))
		if nullBitmap == nil {
			return RowImage{}, r.err
		}
		isNull := decodeBitmap(nullBitmap, numCols)
		values := make([]interface{}, numCols)
		for i, col := range tme.Columns {
			if isNull[i] {
				values[i] = nil
				continue
			}
			v, err := d.decodeColumnValue(r, col)
			if err != nil {
				return RowImage{}, wrapErr(err, "column %d (%s)", col.Ordinal, col.Type)
			}
			values[i] = v
		}
		return RowImage{Values: values}, nil
	}

	switch eventType {
	case UpdateRowsEventType:
		before, err := readImage()
		if err != nil {
			return RowsEvent{}, err
		}
		after, err := readImage()
		if err != nil {
			return RowsEvent{}, err
		}
		e.Before = []RowImage{before}
		e.After = []RowImage{after}
	case DeleteRowsEventType:
		before, err := readImage()
		if err != nil {
			return RowsEvent{}, err
		}
		e.Before = []RowImage{before}
	default: // WriteRowsEventType (insert)
		after, err := readImage()
		if err != nil {
			return RowsEvent{}, err
		}
		e.After = []RowImage{after}
	}
	return e, nil
}
