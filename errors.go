package binlog

import "github.com/pkg/errors"

// Sentinel error kinds matching spec §7's taxonomy. Callers use
// errors.Is against these; every occurrence is wrapped with
// github.com/pkg/errors to carry a stack and positional context.
var (
	// ErrTruncated: fewer bytes were available than a field declared.
	ErrTruncated = errors.New("binlog: truncated input")

	// ErrMalformed: framing is inconsistent (bad magic, event_length
	// too small, a non-advancing next_event_position, a missing NUL
	// terminator where one is required).
	ErrMalformed = errors.New("binlog: malformed framing")

	// ErrUnknownTag: a length-encoded integer's reserved first byte,
	// an unrecognized status-variable code, or a BLOB length-of-length
	// outside {1,2,3,4}.
	ErrUnknownTag = errors.New("binlog: unknown tag")

	// ErrMissingTable: a row event referenced a table id with no prior
	// Table-Map event.
	ErrMissingTable = errors.New("binlog: missing prerequisite table-map")

	// ErrInvalidEncoding: a field required to be valid UTF-8 was not,
	// and had no base64 fallback available.
	ErrInvalidEncoding = errors.New("binlog: invalid encoding")

	// ErrAuxFile: an auxiliary mapping file (field_types.txt or
	// metablock_mapping.txt) could not be loaded or parsed.
	ErrAuxFile = errors.New("binlog: auxiliary file load failure")
)

func wrap(kind error, msg string) error {
	return errors.Wrap(kind, msg)
}

func wrapf(kind error, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}

// wrapErr adds positional context to an error already carrying one of
// the sentinel kinds above, preserving errors.Is matchability.
func wrapErr(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
