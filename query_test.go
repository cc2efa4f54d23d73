package binlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStatusVarFlags2(t *testing.T) {
	dec := NewDecoder()
	body := append([]byte{0}, le32(optionAutoIsNull|optionNotAutocommit)...)
	vars, err := dec.decodeStatusVars(body)
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Contains(t, vars[0], "OPTION_AUTO_IS_NULL")
	assert.Contains(t, vars[0], "OPTION_NOT_AUTOCOMMIT")
}

func TestDecodeStatusVarUnknownCodeIsFatalByDefault(t *testing.T) {
	dec := NewDecoder()
	_, err := dec.decodeStatusVars([]byte{250})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestDecodeStatusVarUnknownCodeToleratedWhenConfigured(t *testing.T) {
	dec := NewDecoder()
	dec.TolerantStatusVars = true
	body := append([]byte{5, 2}, []byte("+8")...)
	body = append(body, 250) // unknown, should stop parsing but not error
	vars, err := dec.decodeStatusVars(body)
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, "+8", vars[0])
}

func TestDecodeQueryEventStripsTrailingCRCAndSeparator(t *testing.T) {
	dec := NewDecoder()
	schema := "mydb"
	query := "SELECT 1"
	body := append(le32(1), le32(2)...)              // thread id, exec time
	body = append(body, byte(len(schema)))            // schema len
	body = append(body, le16(0)...)                   // error code
	body = append(body, le16(0)...)                   // status var len = 0
	body = append(body, []byte(schema)...)
	body = append(body, 0) // NUL terminator
	body = append(body, []byte(query)...)
	body = append(body, make([]byte, 5)...) // trailing CRC(4) + separator(1)

	e, err := decodeQueryEvent(dec, body)
	require.NoError(t, err)
	assert.Equal(t, schema, e.Schema)
	assert.Equal(t, query, e.Query)
}
