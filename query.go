package binlog

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// QueryEvent (type 2) carries a statement executed on the master along
// with the session status variables active when it ran (spec §3/§4.5).
type QueryEvent struct {
	ThreadID      uint32
	ExecutionTime uint32
	ErrorCode     uint16
	StatusVars    []string
	Schema        string
	Query         string
}

var sqlModeNames = [32]string{
	"MODE_REAL_AS_FLOAT", "MODE_PIPES_AS_CONCAT", "MODE_ANSI_QUOTES", "MODE_IGNORE_SPACE",
	"MODE_NOT_USED", "MODE_ONLY_FULL_GROUP_BY", "MODE_NO_UNSIGNED_SUBTRACTION",
	"MODE_NO_DIR_IN_CREATE", "MODE_POSTGRESQL", "MODE_ORACLE", "MODE_MSSQL", "MODE_DB2", "MODE_MAXDB",
	"MODE_NO_KEY_OPTIONS", "MODE_NO_TABLE_OPTIONS", "MODE_NO_FIELD_OPTIONS", "MODE_MYSQL323",
	"MODE_MYSQL40", "MODE_ANSI", "MODE_NO_AUTO_VALUE_ON_ZERO", "MODE_NO_BACKSLASH_ESCAPES",
	"MODE_STRICT_TRANS_TABLES", "MODE_STRICT_ALL_TABLES", "MODE_NO_ZERO_IN_DATE",
	"MODE_NO_ZERO_DATE", "MODE_INVALID_DATES", "MODE_ERROR_FOR_DIVISION_BY_ZERO",
	"MODE_TRADITIONAL", "MODE_NO_AUTO_CREATE_USER", "MODE_HIGH_NOT_PRECEDENCE",
	"MODE_NO_ENGINE_SUBSTITUTION", "MODE_PAD_CHAR_TO_FULL_LENGTH",
}

const (
	optionAutoIsNull          uint32 = 0x4000
	optionNotAutocommit       uint32 = 0x80000
	optionNoForeignKeyChecks  uint32 = 0x4000000
	optionRelaxedUniqueChecks uint32 = 0x8000000
)

// decodeStatusVars decodes the Query event's status-variable block
// (spec §4.5) into human-readable strings, one per entry. An
// unrecognized code is fatal unless Decoder.TolerantStatusVars is set,
// in which case the remainder of the block is abandoned and decoding
// continues (spec §9's aspirational "production decoder" note, offered
// here as an opt-in, not the default).
func (d *Decoder) decodeStatusVars(b []byte) ([]string, error) {
	r := newReader(b)
	var vars []string
	for r.len() > 0 {
		code := r.int1()
		if r.err != nil {
			return nil, r.err
		}
		s, err := decodeStatusVar(r, code)
		if err != nil {
			if d.TolerantStatusVars {
				logrus.WithError(err).Warn("abandoning remaining query status variables")
				return vars, nil
			}
			return nil, err
		}
		vars = append(vars, s)
	}
	return vars, nil
}

func decodeStatusVar(r *reader, code byte) (string, error) {
	switch code {
	case 0: // Q_FLAGS2
		flags := r.int4()
		var set []string
		if flags&optionAutoIsNull != 0 {
			set = append(set, "OPTION_AUTO_IS_NULL")
		}
		if flags&optionNotAutocommit != 0 {
			set = append(set, "OPTION_NOT_AUTOCOMMIT")
		}
		if flags&optionNoForeignKeyChecks != 0 {
			set = append(set, "OPTION_NO_FOREIGN_KEY_CHECKS")
		}
		if flags&optionRelaxedUniqueChecks != 0 {
			set = append(set, "OPTION_RELAXED_UNIQUE_CHECKS")
		}
		return "FLAGS2 is [" + strings.Join(set, " | ") + "]", r.err
	case 1: // Q_SQL_MODE
		mode := r.int8()
		var set []string
		for i := 0; i < 32; i++ {
			if mode&(1<<uint(i)) != 0 {
				set = append(set, sqlModeNames[i])
			}
		}
		return "SQL_MODE is [" + strings.Join(set, " | ") + "]", r.err
	case 3: // Q_AUTO_INCREMENT
		incr, offset := r.int2(), r.int2()
		return fmt.Sprintf("auto_increment increment is %d, auto increment offset is %d", incr, offset), r.err
	case 4: // Q_CHARSET
		client, coll, server := r.int2(), r.int2(), r.int2()
		return fmt.Sprintf("client character set is %d, collation connection is %d, collation server is %d, for detail please run query `SELECT id, character_set_name, collation_name FROM information_schema.COLLATIONS;`", client, coll, server), r.err
	case 5: // Q_TIMEZONE
		return r.stringN(int(r.int1())), r.err
	case 6: // Q_CATALOG_NZ
		return "catalog name is " + r.stringN(int(r.int1())), r.err
	case 7: // Q_LC_TIME_NAMES
		return fmt.Sprintf("lc time names code is %d", r.int2()), r.err
	case 8: // Q_CHARSET_DATABASE
		return fmt.Sprintf("charset database code is %d", r.int2()), r.err
	case 9: // Q_TABLE_MAP_FOR_UPDATE
		return fmt.Sprintf("table map for update code is %08b", r.int1()), r.err
	case 11: // Q_INVOKER
		user := r.stringN(int(r.int1()))
		host := r.stringN(int(r.int1()))
		return fmt.Sprintf("user name is %s, host name is %s", user, host), r.err
	case 128: // Q_HRNOW
		return fmt.Sprintf("hrnow is %d", r.int3()), r.err
	case 129: // Q_XID
		return fmt.Sprintf("xid is %d", r.int8()), r.err
	default:
		return "", wrapf(ErrUnknownTag, "unknown status variable code %d", code)
	}
}

func decodeQueryEvent(d *Decoder, b []byte) (QueryEvent, error) {
	r := newReader(b)
	e := QueryEvent{
		ThreadID:      r.int4(),
		ExecutionTime: r.int4(),
	}
	schemaLen := int(r.int1())
	e.ErrorCode = r.int2()
	statusVarLen := int(r.int2())
	if r.err != nil {
		return QueryEvent{}, r.err
	}

	statusVarBlock := r.take(statusVarLen)
	if statusVarBlock == nil {
		return QueryEvent{}, r.err
	}
	vars, err := d.decodeStatusVars(statusVarBlock)
	if err != nil {
		return QueryEvent{}, wrapErr(err, "query status variables")
	}
	e.StatusVars = vars

	schemaBytes := r.take(schemaLen + 1)
	if schemaBytes == nil {
		return QueryEvent{}, r.err
	}
	e.Schema = trimTrailingNuls(schemaBytes)

	rest := r.rest()
	if r.err != nil {
		return QueryEvent{}, r.err
	}
	if len(rest) < 5 {
		return QueryEvent{}, wrap(ErrMalformed, "query event body too short for trailing CRC+separator")
	}
	e.Query = string(rest[:len(rest)-5])
	return e, nil
}
