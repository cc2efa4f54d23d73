package binlog

import (
	"time"

	"github.com/pkg/errors"
)

// defaultTimezoneOffset is the fallback rendering offset for
// TIMESTAMP2 values (spec §9): the reference this spec was distilled
// from hardcoded +08:00; this module keeps the same default but makes
// it a Decoder option (Decoder.TimezoneOffset).
const defaultTimezoneOffset = 8 * time.Hour

// Event is one decoded binlog record: a fixed header plus a
// type-specific body (spec §3). Body holds one of the *Event types in
// this package (FormatDescriptionEvent, QueryEvent, RotateEvent,
// IntvarEvent, RandEvent, UserVarEvent, XidEvent, TableMapEvent,
// RowsEvent, XAPrepareEvent, AnnotateRowsEvent, BinlogCheckpointEvent,
// GtidEvent, GtidListEvent, StartEncryptionEvent) or UnknownEvent.
type Event struct {
	Header EventHeader
	Body   interface{}
}

// Decoder turns a binlog file's bytes into a stream of Events. It
// holds the running decode state the spec requires: the current
// FormatDescriptionEvent, the table-map registry, and the metadata
// catalogue driving per-column widths (spec §5).
type Decoder struct {
	// TimezoneOffset controls how TIMESTAMP2 values are rendered (spec
	// §9's "this should be a decoder configuration option" note).
	// Zero means defaultTimezoneOffset.
	TimezoneOffset time.Duration

	// TolerantStatusVars, when true, attenuates an unrecognized Query
	// event status-variable code from a fatal error to "stop decoding
	// status vars for this event, keep what was already decoded" (spec
	// §9's aspirational note). Default false: spec §4.5/§7 describe
	// this as fatal in the present tense, so that is the default.
	TolerantStatusVars bool

	// MetaBlockCatalogue drives per-column-type metadata widths in
	// Table-Map decoding (spec §4.4/§6). Defaults to
	// DefaultMetaBlockCatalogue() when nil.
	MetaBlockCatalogue *MetaBlockCatalogue

	fde      FormatDescriptionEvent
	registry *tableMapRegistry
}

// NewDecoder builds a Decoder with its table-map registry initialized
// empty, ready to read a single binlog file end to end.
func NewDecoder() *Decoder {
	return &Decoder{registry: newTableMapRegistry()}
}

func (d *Decoder) timezoneOffset() time.Duration {
	if d.TimezoneOffset == 0 {
		return defaultTimezoneOffset
	}
	return d.TimezoneOffset
}

func (d *Decoder) catalogue() *MetaBlockCatalogue {
	if d.MetaBlockCatalogue == nil {
		return DefaultMetaBlockCatalogue()
	}
	return d.MetaBlockCatalogue
}

func unixToLocal(unixSecs int64, offset time.Duration) time.Time {
	return time.Unix(unixSecs, 0).UTC().Add(offset)
}

// DecodeAll reads the 4-byte magic from data, then decodes every event
// in sequence until the file is exhausted (spec §4.1). Any framing or
// body-decode error aborts the whole stream; there is no per-event
// skip-and-continue (spec §7).
func (d *Decoder) DecodeAll(data []byte) ([]Event, error) {
	if err := checkMagic(data); err != nil {
		return nil, err
	}
	var events []Event
	cursor := uint32(len(magic))
	fileLen := uint32(len(data))

	for cursor < fileLen {
		if int(cursor)+headerSize > len(data) {
			return events, wrapf(ErrTruncated, "event header at offset %d exceeds file length %d", cursor, fileLen)
		}
		header, err := decodeEventHeader(data[cursor : cursor+headerSize])
		if err != nil {
			return events, wrapErr(err, "event header at offset %d", cursor)
		}
		if header.EventLength < headerSize {
			return events, wrapf(ErrMalformed, "event at offset %d has event_length %d < header size", cursor, header.EventLength)
		}
		bodyStart := cursor + headerSize
		bodyLen := header.EventLength - headerSize
		if int(bodyStart)+int(bodyLen) > len(data) {
			return events, wrapf(ErrTruncated, "event body at offset %d needs %d bytes, file has %d remaining", bodyStart, bodyLen, len(data)-int(bodyStart))
		}
		body := data[bodyStart : bodyStart+bodyLen]

		decoded, err := d.decodeBody(header, body)
		if err != nil {
			return events, wrapErr(err, "event %s at offset %d", header.EventType, cursor)
		}
		events = append(events, Event{Header: header, Body: decoded})

		if header.NextEventPosition <= cursor {
			return events, wrapf(ErrMalformed, "next_event_position %d does not advance past %d", header.NextEventPosition, cursor)
		}
		cursor = header.NextEventPosition
	}
	return events, nil
}

func (d *Decoder) decodeBody(header EventHeader, body []byte) (interface{}, error) {
	switch header.EventType {
	case FormatDescriptionType:
		fde, err := decodeFormatDescriptionEvent(body)
		if err == nil {
			d.fde = fde
		}
		return fde, err
	case QueryEventType:
		return decodeQueryEvent(d, body)
	case RotateEventType:
		return decodeRotateEvent(body)
	case IntvarEventType:
		return decodeIntvarEvent(body)
	case RandEventType:
		return decodeRandEvent(body)
	case UserVarEventType:
		return decodeUserVarEvent(body)
	case XidEventType:
		return decodeXidEvent(body)
	case TableMapEventType:
		tme, err := decodeTableMapEvent(body, d.catalogue())
		if err != nil {
			return nil, err
		}
		d.registry.put(tme)
		return tme, nil
	case WriteRowsEventType, UpdateRowsEventType, DeleteRowsEventType:
		return d.decodeRowsEvent(body, header.EventType, d.registry)
	case XAPrepareEventType:
		return decodeXAPrepareEvent(body)
	case AnnotateRowsEventType:
		return decodeAnnotateRowsEvent(body)
	case BinlogCheckpointType:
		return decodeBinlogCheckpointEvent(body)
	case GtidEventType:
		return decodeGtidEvent(body)
	case GtidListEventType:
		return decodeGtidListEvent(body)
	case StartEncryptionType:
		return decodeStartEncryptionEvent(body)
	default:
		return UnknownEvent{RawType: header.EventType, Body: append([]byte(nil), body...)}, nil
	}
}

func checkMagic(data []byte) error {
	if len(data) < len(magic) {
		return errors.Wrap(ErrTruncated, "file shorter than magic number")
	}
	for i, m := range magic {
		if data[i] != m {
			return wrap(ErrMalformed, "bad magic number")
		}
	}
	return nil
}

// SeedTableMapForTest installs a Table-Map event into the registry
// without decoding it from the stream, supporting the §6 `--test`
// single-event dump mode: a predetermined schema is seeded, then one
// event is decoded at a fixed offset.
func (d *Decoder) SeedTableMapForTest(tme TableMapEvent) {
	if d.registry == nil {
		d.registry = newTableMapRegistry()
	}
	d.registry.put(tme)
}

// DecodeOneAt decodes a single event at the given absolute file offset,
// used by the §6 `--test` mode. It does not require or check the
// surrounding stream framing beyond the one event's own header.
func (d *Decoder) DecodeOneAt(data []byte, offset uint32) (Event, error) {
	if int(offset)+headerSize > len(data) {
		return Event{}, wrapf(ErrTruncated, "offset %d leaves no room for a header", offset)
	}
	header, err := decodeEventHeader(data[offset : offset+headerSize])
	if err != nil {
		return Event{}, wrapErr(err, "event header at offset %d", offset)
	}
	bodyStart := offset + headerSize
	bodyLen := header.EventLength - headerSize
	if int(bodyStart)+int(bodyLen) > len(data) {
		return Event{}, wrapf(ErrTruncated, "event body at offset %d needs %d bytes", bodyStart, bodyLen)
	}
	body := data[bodyStart : bodyStart+bodyLen]
	decoded, err := d.decodeBody(header, body)
	if err != nil {
		return Event{}, wrapErr(err, "event %s at offset %d", header.EventType, offset)
	}
	return Event{Header: header, Body: decoded}, nil
}
