package binlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserVarEventNullIndicatorPolarity pins down DESIGN.md Open
// Question 5: fields are present when NullIndicator > 0, the opposite
// of the standard MySQL-protocol convention.
func TestUserVarEventNullIndicatorPolarity(t *testing.T) {
	name := "myvar"
	body := append(le32(uint32(len(name))), []byte(name)...)
	body = append(body, 1) // null indicator > 0 => fields follow
	body = append(body, 2) // type = INT_RESULT
	body = append(body, le32(33)...)
	body = append(body, le32(1)...) // value length
	body = append(body, []byte("5")...)
	body = append(body, 0) // flags

	e, err := decodeUserVarEvent(body)
	require.NoError(t, err)
	assert.Equal(t, name, e.Name)
	assert.Equal(t, byte(1), e.NullIndicator)
	assert.Equal(t, "5", string(e.Value))
	assert.Equal(t, "INT_RESULT", e.TypeName())
}

func TestUserVarEventNullIndicatorZeroMeansNoFields(t *testing.T) {
	name := "v"
	body := append(le32(uint32(len(name))), []byte(name)...)
	body = append(body, 0) // null indicator == 0 => no extra fields

	e, err := decodeUserVarEvent(body)
	require.NoError(t, err)
	assert.Equal(t, name, e.Name)
	assert.Nil(t, e.Value)
}

func TestGtidEventGroupCommitBranch(t *testing.T) {
	body := append(le64(100), le32(7)...)
	body = append(body, GtidFlagGroupCommitID)
	body = append(body, le64(555)...)

	e, err := decodeGtidEvent(body)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), e.Sequence)
	assert.Equal(t, uint32(7), e.Domain)
	assert.Equal(t, uint64(555), e.CommitID)
}

func TestGtidListEventFieldOrder(t *testing.T) {
	body := le32(1)
	body = append(body, le32(9)...)   // domain
	body = append(body, le32(2)...)   // server id
	body = append(body, le64(1234)...) // sequence

	e, err := decodeGtidListEvent(body)
	require.NoError(t, err)
	require.Len(t, e.Entries, 1)
	assert.Equal(t, uint32(9), e.Entries[0].Domain)
	assert.Equal(t, uint32(2), e.Entries[0].ServerID)
	assert.Equal(t, uint64(1234), e.Entries[0].Sequence)
}

func TestXAPrepareEventGtridLengthIsFourBytes(t *testing.T) {
	xidBytes := []byte("gtrid-and-bqual")
	body := append([]byte{1}, le32(123)...) // one-phase, format id
	body = append(body, le32(uint32(len(xidBytes)-4))...) // gtrid len
	body = append(body, 4) // bqual len
	body = append(body, xidBytes...)

	e, err := decodeXAPrepareEvent(body)
	require.NoError(t, err)
	assert.True(t, e.OnePhase)
	assert.Equal(t, uint32(123), e.FormatID)
	assert.Equal(t, xidBytes, e.XID)
}
