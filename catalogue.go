package binlog

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ColumnType is a MariaDB/MySQL column storage type code, as carried in
// a Table-Map event's column-type array (spec §4.4).
type ColumnType uint8

const (
	TypeDecimal    ColumnType = 0
	TypeTiny       ColumnType = 1
	TypeShort      ColumnType = 2
	TypeLong       ColumnType = 3
	TypeFloat      ColumnType = 4
	TypeDouble     ColumnType = 5
	TypeNull       ColumnType = 6
	TypeTimestamp  ColumnType = 7
	TypeLongLong   ColumnType = 8
	TypeInt24      ColumnType = 9
	TypeDate       ColumnType = 10
	TypeTime       ColumnType = 11
	TypeDatetime   ColumnType = 12
	TypeYear       ColumnType = 13
	TypeNewDate    ColumnType = 14
	TypeVarchar    ColumnType = 15
	TypeBit        ColumnType = 16
	TypeTimestamp2 ColumnType = 17
	TypeDatetime2  ColumnType = 18
	TypeTime2      ColumnType = 19
	TypeJSON       ColumnType = 245
	TypeNewDecimal ColumnType = 246
	TypeEnum       ColumnType = 247
	TypeSet        ColumnType = 248
	TypeTinyBlob   ColumnType = 249
	TypeMediumBlob ColumnType = 250
	TypeLongBlob   ColumnType = 251
	TypeBlob       ColumnType = 252
	TypeVarString  ColumnType = 253
	TypeString     ColumnType = 254
	TypeGeometry   ColumnType = 255
)

var builtinTypeNames = map[ColumnType]string{
	TypeDecimal: "DECIMAL", TypeTiny: "TINY", TypeShort: "SHORT",
	TypeLong: "LONG", TypeFloat: "FLOAT", TypeDouble: "DOUBLE",
	TypeNull: "NULL", TypeTimestamp: "TIMESTAMP", TypeLongLong: "LONGLONG",
	TypeInt24: "INT24", TypeDate: "DATE", TypeTime: "TIME",
	TypeDatetime: "DATETIME", TypeYear: "YEAR", TypeNewDate: "NEWDATE",
	TypeVarchar: "VARCHAR", TypeBit: "BIT", TypeTimestamp2: "TIMESTAMP2",
	TypeDatetime2: "DATETIME2", TypeTime2: "TIME2", TypeJSON: "JSON",
	TypeNewDecimal: "NEWDECIMAL", TypeEnum: "ENUM", TypeSet: "SET",
	TypeTinyBlob: "TINY_BLOB", TypeMediumBlob: "MEDIUM_BLOB",
	TypeLongBlob: "LONG_BLOB", TypeBlob: "BLOB", TypeVarString: "VAR_STRING",
	TypeString: "STRING", TypeGeometry: "GEOMETRY",
}

func (t ColumnType) String() string {
	if name, ok := builtinTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// MetaBlockCatalogue maps a column type code to the byte width of its
// entry in a Table-Map event's metadata block (spec §4.4). The
// defaults below match the spec's table; an external
// metablock_mapping.txt (spec §6) may override or extend it.
type MetaBlockCatalogue struct {
	Width map[ColumnType]int
	Name  map[ColumnType]string
}

// DefaultMetaBlockCatalogue returns the built-in width table described
// in spec §4.4, used whenever no external metablock_mapping.txt is
// supplied (e.g. in library use and unit tests).
func DefaultMetaBlockCatalogue() *MetaBlockCatalogue {
	return &MetaBlockCatalogue{
		Width: map[ColumnType]int{
			TypeFloat:      1,
			TypeDouble:     1,
			TypeVarchar:    2,
			TypeBit:        2,
			TypeTimestamp2: 1,
			TypeDatetime2:  1,
			TypeTime2:      1,
			TypeNewDecimal: 2,
			TypeBlob:       1,
			TypeTinyBlob:   1,
			TypeMediumBlob: 1,
			TypeLongBlob:   1,
			TypeVarString:  2,
			TypeString:     2,
			TypeGeometry:   1,
		},
		Name: builtinTypeNamesCopy(),
	}
}

func builtinTypeNamesCopy() map[ColumnType]string {
	m := make(map[ColumnType]string, len(builtinTypeNames))
	for k, v := range builtinTypeNames {
		m[k] = v
	}
	return m
}

func (c *MetaBlockCatalogue) widthOf(t ColumnType) int {
	if c == nil {
		return DefaultMetaBlockCatalogue().Width[t]
	}
	return c.Width[t]
}

// LoadMetaBlockMapping parses an external metablock_mapping.txt (spec
// §6): comma-separated triples "<name>,<type_code>,<metadata_width>"
// per line, one entry overriding or adding to the default catalogue.
func LoadMetaBlockMapping(path string) (*MetaBlockCatalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrAuxFile, "open metablock mapping %q: %v", path, err)
	}
	defer f.Close()

	cat := DefaultMetaBlockCatalogue()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, errors.Wrapf(ErrAuxFile, "%s:%d: expected 3 comma-separated fields, got %d", path, lineNo, len(parts))
		}
		name := strings.TrimSpace(parts[0])
		code, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, errors.Wrapf(ErrAuxFile, "%s:%d: bad type code: %v", path, lineNo, err)
		}
		width, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, errors.Wrapf(ErrAuxFile, "%s:%d: bad metadata width: %v", path, lineNo, err)
		}
		t := ColumnType(code)
		cat.Width[t] = width
		cat.Name[t] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrAuxFile, "read %q: %v", path, err)
	}
	logrus.WithField("file", path).WithField("entries", lineNo).Debug("loaded metablock mapping")
	return cat, nil
}

// FieldTypeCatalogue is the bidirectional name<->id table loaded from
// field_types.txt (spec §6): one entry per line, "NAME = ID" (explicit
// id, resets the auto-increment counter) or "NAME" (auto-incrementing
// from the last explicit or implicit id, starting at 0). Only the
// first comma-separated field of a line is consumed; anything after
// the first comma is ignored.
type FieldTypeCatalogue struct {
	NameToID map[string]int
	IDToName map[int]string
}

func LoadFieldTypeCatalogue(path string) (*FieldTypeCatalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrAuxFile, "open field types %q: %v", path, err)
	}
	defer f.Close()

	cat := &FieldTypeCatalogue{NameToID: map[string]int{}, IDToName: map[int]string{}}
	next := 0
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry := strings.TrimSpace(strings.SplitN(line, ",", 2)[0])
		if entry == "" {
			continue
		}
		var id int
		var name string
		if eq := strings.Index(entry, "="); eq != -1 {
			name = strings.TrimSpace(entry[:eq])
			id, err = strconv.Atoi(strings.TrimSpace(entry[eq+1:]))
			if err != nil {
				return nil, errors.Wrapf(ErrAuxFile, "%s:%d: bad explicit id: %v", path, lineNo, err)
			}
			next = id + 1
		} else {
			name = entry
			id = next
			next++
		}
		cat.NameToID[name] = id
		cat.IDToName[id] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrAuxFile, "read %q: %v", path, err)
	}
	logrus.WithField("file", path).WithField("entries", len(cat.NameToID)).Debug("loaded field type catalogue")
	return cat, nil
}
