package binlog

import (
	"fmt"
	"math"
)

// decodeColumnValue decodes a single row-event column value, given its
// declared type and the per-column metadata recorded by the owning
// Table-Map event (spec §4.6). Metadata is already keyed one-to-one by
// column ordinal in TableMapEvent.Columns, which is what keeps this in
// lock-step with the null bitmap without a separate cursor: callers
// index columns[i] for every i regardless of whether the value turns
// out to be null, exactly as spec §4.6 requires.
func (d *Decoder) decodeColumnValue(r *reader, col Column) (interface{}, error) {
	switch col.Type {
	case TypeTiny:
		return int64(int8(r.int1())), r.err
	case TypeShort:
		return int64(int16(r.int2())), r.err
	case TypeInt24:
		v := r.int3()
		if v&0x800000 != 0 {
			v |= 0xff000000
		}
		return int64(int32(v)), r.err
	case TypeLong:
		return int64(int32(r.int4())), r.err
	case TypeLongLong:
		return int64(r.int8()), r.err
	case TypeFloat:
		bits := r.int4()
		return math.Float32frombits(bits), r.err
	case TypeDouble:
		bits := r.int8()
		return math.Float64frombits(bits), r.err
	case TypeNewDecimal, TypeDecimal:
		if len(col.Meta) < 2 {
			return nil, wrap(ErrMalformed, "newdecimal column missing precision/decimals metadata")
		}
		precision, decimals := int(col.Meta[0]), int(col.Meta[1])
		intBytes, fracBytes := decimalByteLength(precision-decimals, decimals)
		raw := r.take(intBytes + fracBytes)
		if raw == nil {
			return nil, r.err
		}
		return decodeNewDecimal(raw, precision, decimals)
	case TypeVarchar, TypeVarString:
		return d.decodeVarString(r, col)
	case TypeString:
		return d.decodeString(r, col)
	case TypeEnum:
		return d.decodeEnumSet(r, col)
	case TypeSet:
		return d.decodeEnumSet(r, col)
	case TypeBit:
		return d.decodeBit(r, col)
	case TypeTinyBlob, TypeMediumBlob, TypeLongBlob, TypeBlob, TypeGeometry, TypeJSON:
		return d.decodeBlob(r, col)
	case TypeDate:
		return decodeDate(r)
	case TypeTime2:
		return decodeTime2(r, col)
	case TypeDatetime2:
		return decodeDatetime2(r, col)
	case TypeTimestamp2:
		return d.decodeTimestamp2(r, col)
	case TypeYear:
		return 1900 + int(r.int1()), r.err
	case TypeNull:
		return nil, nil
	default:
		return nil, wrapf(ErrUnknownTag, "unsupported column type %s (%d)", col.Type, col.Type)
	}
}

// decodeVarString reads a VARCHAR/VAR_STRING value. Its declared
// maximum length (little-endian from metadata) decides whether the
// actual length prefix is one or two bytes (spec §4.6).
func (d *Decoder) decodeVarString(r *reader, col Column) (interface{}, error) {
	maxLen := metaUint16(col.Meta)
	var n int
	if maxLen > 255 {
		n = int(r.int2())
	} else {
		n = int(r.int1())
	}
	b := r.take(n)
	if b == nil {
		return nil, r.err
	}
	return renderText(b), nil
}

// decodeString reads a fixed STRING column: MariaDB always prefixes it
// with a single length byte regardless of the declared field width
// packed into metadata[1].
func (d *Decoder) decodeString(r *reader, col Column) (interface{}, error) {
	n := int(r.int1())
	b := r.take(n)
	if b == nil {
		return nil, r.err
	}
	return renderText(b), nil
}

func (d *Decoder) decodeEnumSet(r *reader, col Column) (interface{}, error) {
	width := 1
	if len(col.Meta) >= 2 {
		width = int(col.Meta[1])
	}
	switch width {
	case 1:
		return int64(r.int1()), r.err
	default:
		return int64(r.int2()), r.err
	}
}

func (d *Decoder) decodeBit(r *reader, col Column) (interface{}, error) {
	if len(col.Meta) < 2 {
		return nil, wrap(ErrMalformed, "bit column missing bitlen/bytelen metadata")
	}
	bitLen, byteLen := int(col.Meta[0]), int(col.Meta[1])
	total := byteLen
	if bitLen > 0 {
		total++
	}
	b := r.take(total)
	if b == nil {
		return nil, r.err
	}
	return decodeBitmap(reverseBytes(b), total*8), nil
}

// decodeBlob reads a BLOB/TINY_BLOB/MEDIUM_BLOB/LONG_BLOB/GEOMETRY/JSON
// value. metadata[0] is the "length of length": the number of
// little-endian bytes that prefix the payload (spec §4.6); 3-byte
// lengths are zero-extended to 32 bits like any other 3-byte field.
func (d *Decoder) decodeBlob(r *reader, col Column) (interface{}, error) {
	if len(col.Meta) < 1 {
		return nil, wrap(ErrMalformed, "blob column missing length-of-length metadata")
	}
	lenOfLen := int(col.Meta[0])
	var n int
	switch lenOfLen {
	case 1:
		n = int(r.int1())
	case 2:
		n = int(r.int2())
	case 3:
		n = int(r.int3())
	case 4:
		n = int(r.int4())
	default:
		return nil, wrapf(ErrUnknownTag, "blob length-of-length %d not in {1,2,3,4}", lenOfLen)
	}
	b := r.take(n)
	if b == nil {
		return nil, r.err
	}
	return renderText(b), nil
}

func metaUint16(meta []byte) int {
	if len(meta) < 2 {
		return 0
	}
	return int(meta[0]) | int(meta[1])<<8
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// decodeDate reads a 3-byte packed DATE. Bits are consumed LSB-first
// from a little-endian 3-byte value: day in the low 5 bits, month in
// the next 4, year in the remaining 15. Rendered without zero-padding,
// matching original_source.
func decodeDate(r *reader) (interface{}, error) {
	v := r.int3()
	if r.err != nil {
		return nil, r.err
	}
	day := v & 0x1f
	month := (v >> 5) & 0xf
	year := v >> 9
	return fmt.Sprintf("%d-%d-%d", year, month, day), nil
}

// decodeTime2 reads a 3-byte big-endian TIME2 value (spec §9): subtract
// the bias 0x800000, take the absolute value, then hour/min/sec come
// out of fixed bit windows. Rendered as zero-padded HH:MM:SS throughout
// (fixing the dropped-colon formatting bug spec §9 flags in the
// reference this was distilled from).
func decodeTime2(r *reader, col Column) (interface{}, error) {
	raw := r.beIntN(3)
	if r.err != nil {
		return nil, r.err
	}
	v := int64(raw) - 0x800000
	if v < 0 {
		v = -v
	}
	hour := (v >> 12) % 1024
	minute := (v >> 6) % 64
	second := v % 64
	return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second), nil
}

// decodeDatetime2 reads a 5-byte big-endian DATETIME2 value.
func decodeDatetime2(r *reader, col Column) (interface{}, error) {
	raw := r.beIntN(5)
	if r.err != nil {
		return nil, r.err
	}
	v := int64(raw) - 0x8000000000
	dateVal := v >> 17
	timeVal := v & 0x1ffff

	day := dateVal & 0x1f
	ym := dateVal >> 5
	month := ym % 13
	year := ym / 13

	second := timeVal % 64
	minute := (timeVal >> 6) % 64
	hour := timeVal >> 12

	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, month, day, hour, minute, second), nil
}

// decodeTimestamp2 reads a 4-byte big-endian unix-seconds value and
// renders it in the decoder's configured timezone offset (spec §9:
// this was a hardcoded +08:00 in the reference, now a Decoder option
// defaulting to the same +8h).
func (d *Decoder) decodeTimestamp2(r *reader, col Column) (interface{}, error) {
	secs := r.beIntN(4)
	if r.err != nil {
		return nil, r.err
	}
	t := unixToLocal(int64(secs), d.timezoneOffset())
	return t, nil
}
