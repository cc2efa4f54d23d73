package binlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLenencAllWidthTiers(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want uint64
	}{
		{"1-byte", []byte{0x05}, 5},
		{"1-byte-max", []byte{0xfa}, 0xfa},
		{"2-byte", append([]byte{0xfc}, le16(1000)...), 1000},
		{"3-byte", append([]byte{0xfd}, 0x01, 0x02, 0x03), 0x030201},
		{"8-byte", append([]byte{0xfe}, le64(1 << 40)...), 1 << 40},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newReader(c.buf)
			got := r.lenenc()
			require.NoError(t, r.err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestLenencReservedBytesAreErrors(t *testing.T) {
	for _, b := range []byte{0xfb, 0xff} {
		r := newReader([]byte{b})
		r.lenenc()
		require.Error(t, r.err)
		assert.ErrorIs(t, r.err, ErrUnknownTag)
	}
}

func TestDecodeBitmapLSBFirst(t *testing.T) {
	// byte 0 = 0b00000101 -> columns 0 and 2 set
	bits := decodeBitmap([]byte{0x05}, 8)
	want := []bool{true, false, true, false, false, false, false, false}
	assert.Equal(t, want, bits)
}

func TestDecodeBitmapTruncatedToColumnCount(t *testing.T) {
	bits := decodeBitmap([]byte{0xff, 0xff}, 10)
	assert.Len(t, bits, 10)
	for _, b := range bits {
		assert.True(t, b)
	}
}

func TestBitmapSize(t *testing.T) {
	assert.Equal(t, 1, bitmapSize(1))
	assert.Equal(t, 1, bitmapSize(8))
	assert.Equal(t, 2, bitmapSize(9))
	assert.Equal(t, 2, bitmapSize(16))
}

func TestRenderTextUTF8VsBase64(t *testing.T) {
	assert.Equal(t, "this is a String, value is `hi`", renderText([]byte("hi")))

	invalid := []byte{0xff, 0xfe, 0xfd}
	got := renderText(invalid)
	assert.Contains(t, got, "this is not a String, value with base64 is")
}
