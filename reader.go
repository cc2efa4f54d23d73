package binlog

import (
	"bytes"
	"encoding/base64"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// reader is a flat-buffer cursor over a single event body (or header).
// Unlike the wire-protocol reader this package's teacher used, an
// event's bytes are always fully available up front (spec §4.1: a
// complete body is read before it is dispatched), so there is no
// buffering or blocking machinery here, only bounds-checked decoding.
type reader struct {
	buf []byte
	off int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) len() int {
	return len(r.buf) - r.off
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) ensure(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.len() < n {
		r.fail(errors.Wrapf(ErrTruncated, "need %d bytes, have %d", n, r.len()))
		return false
	}
	return true
}

func (r *reader) take(n int) []byte {
	if !r.ensure(n) {
		return nil
	}
	v := r.buf[r.off : r.off+n]
	r.off += n
	return v
}

func (r *reader) int1() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) int2() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (r *reader) int3() uint32 {
	b := r.take(3)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func (r *reader) int4() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (r *reader) int6() uint64 {
	b := r.take(6)
	if b == nil {
		return 0
	}
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 |
		uint64(b[3])<<24 | uint64(b[4])<<32 | uint64(b[5])<<40
}

func (r *reader) int8() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// beIntN reads n big-endian bytes as an unsigned integer, used by the
// bit-packed temporal types (TIME2/DATETIME2/TIMESTAMP2), which are
// stored big-endian unlike everything else in the event stream.
func (r *reader) beIntN(n int) uint64 {
	b := r.take(n)
	if b == nil {
		return 0
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// lenenc decodes a MySQL length-encoded integer (spec §4.2).
func (r *reader) lenenc() uint64 {
	if r.err != nil {
		return 0
	}
	b := r.int1()
	if r.err != nil {
		return 0
	}
	switch {
	case b < 0xfb:
		return uint64(b)
	case b == 0xfb || b == 0xff:
		r.fail(errors.Wrapf(ErrUnknownTag, "invalid lenenc first byte 0x%02x", b))
		return 0
	case b == 0xfc:
		return uint64(r.int2())
	case b == 0xfd:
		return uint64(r.int3())
	default: // 0xfe
		return r.int8()
	}
}

func (r *reader) bytesN(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func (r *reader) stringN(n int) string {
	return string(r.bytesN(n))
}

func (r *reader) lenencString() string {
	n := r.lenenc()
	if r.err != nil {
		return ""
	}
	return r.stringN(int(n))
}

// nulTerminated reads a NUL-terminated byte string, trimming the
// terminator. Several event bodies instead fix a field length and then
// trim trailing NULs from a padded buffer; use trimTrailingNuls for
// those.
func (r *reader) nulTerminated() string {
	if r.err != nil {
		return ""
	}
	rest := r.buf[r.off:]
	i := bytes.IndexByte(rest, 0)
	if i == -1 {
		r.fail(errors.Wrap(ErrMalformed, "missing NUL terminator"))
		return ""
	}
	v := string(rest[:i])
	r.off += i + 1
	return v
}

func (r *reader) rest() []byte {
	if r.err != nil {
		return nil
	}
	v := r.buf[r.off:]
	r.off = len(r.buf)
	return v
}

func trimTrailingNuls(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		return string(b)
	}
	return string(b[:i])
}

// decodeBitmap decodes b into a boolean vector of exactly count
// entries, LSB first within each byte (spec §4.3): bit 0 of byte k is
// column k*8+0. Bits past count in the last byte are dropped.
func decodeBitmap(b []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		out[i] = b[i/8]>>(uint(i)%8)&1 == 1
	}
	return out
}

func bitmapSize(count int) int {
	return (count + 7) / 8
}

// renderText implements the UTF-8-or-base64 fallback rendering used
// for VARCHAR/VAR_STRING/STRING/BLOB values (spec §4.2, §4.6): valid
// UTF-8 is shown as a string literal, anything else is base64-encoded
// with an explicit "not a String" marker.
func renderText(b []byte) string {
	if utf8.Valid(b) {
		return "this is a String, value is `" + string(b) + "`"
	}
	return "this is not a String, value with base64 is " + base64.StdEncoding.EncodeToString(b)
}
