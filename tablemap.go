package binlog

// Column describes one column of a table as learned from a Table-Map
// event: its declared storage type, its ordinal position, whether it
// may be null, and the raw per-column metadata bytes that drive
// type-specific value decoding (spec §4.4/§4.6).
type Column struct {
	Ordinal  int
	Type     ColumnType
	Meta     []byte
	Nullable bool
}

// TableMapEvent (type 19) is the linchpin correlating subsequent row
// events with their schema (spec §3/§4.4).
type TableMapEvent struct {
	TableID   uint64
	SchemaName string
	TableName  string
	Columns    []Column

	// Remainder holds the bytes after the nullability bitmap that spec
	// §4.4 leaves unparsed (MySQL 8.0's extended table metadata in
	// later protocol versions). It is retained verbatim but never
	// interpreted.
	Remainder []byte
}

func decodeTableMapEvent(b []byte, cat *MetaBlockCatalogue) (TableMapEvent, error) {
	r := newReader(b)
	e := TableMapEvent{
		TableID: r.int6(),
	}
	r.take(2) // reserved

	dbLen := int(r.int1())
	e.SchemaName = r.stringN(dbLen)
	r.take(1) // trailing NUL

	tblLen := int(r.int1())
	e.TableName = r.stringN(tblLen)
	r.take(1) // trailing NUL

	numCols := int(r.lenenc())
	if r.err != nil {
		return TableMapEvent{}, r.err
	}

	typeCodes := r.take(numCols)
	if typeCodes == nil {
		return TableMapEvent{}, r.err
	}
	types := make([]ColumnType, numCols)
	for i, c := range typeCodes {
		types[i] = ColumnType(c)
	}

	metaLen := int(r.lenenc())
	if r.err != nil {
		return TableMapEvent{}, r.err
	}
	metaBlock := r.take(metaLen)
	if metaBlock == nil {
		return TableMapEvent{}, r.err
	}

	e.Columns = make([]Column, numCols)
	off := 0
	for i := 0; i < numCols; i++ {
		w := cat.widthOf(types[i])
		if off+w > len(metaBlock) {
			return TableMapEvent{}, wrapf(ErrTruncated, "metadata block too short for column %d of type %s", i, types[i])
		}
		e.Columns[i] = Column{
			Ordinal: i,
			Type:    types[i],
			Meta:    append([]byte(nil), metaBlock[off:off+w]...),
		}
		off += w
	}

	nullBitmap := r.take(bitmapSize(numCols))
	if nullBitmap == nil {
		return TableMapEvent{}, r.err
	}
	nullable := decodeBitmap(nullBitmap, numCols)
	for i := range e.Columns {
		e.Columns[i].Nullable = nullable[i]
	}

	e.Remainder = r.rest()
	return e, r.err
}

// tableMapRegistry maps table id to the last Table-Map event observed
// for it (spec §3/§5); it lives for the duration of a single decode
// pass and is consulted, never cleared mid-stream, by row events.
type tableMapRegistry struct {
	tables map[uint64]*TableMapEvent
}

func newTableMapRegistry() *tableMapRegistry {
	return &tableMapRegistry{tables: make(map[uint64]*TableMapEvent)}
}

func (reg *tableMapRegistry) put(e TableMapEvent) {
	reg.tables[e.TableID] = &e
}

func (reg *tableMapRegistry) get(tableID uint64) (*TableMapEvent, error) {
	tme, ok := reg.tables[tableID]
	if !ok {
		return nil, wrapf(ErrMissingTable, "no table-map event for table id %d", tableID)
	}
	return tme, nil
}
