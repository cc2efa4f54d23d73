package binlog

import (
	"database/sql"
	"flag"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// This mirrors the teacher's own skip pattern (auth_test.go): pass
// -mysql to point at a live server and cross-check this package's
// NEWDECIMAL rendering against what the server itself reports for the
// same value, instead of only trusting synthetic fixtures.
var mysqlDSN = flag.String("mysql", "", "mysql DSN used for cross-check testing, e.g. root:secret@tcp(localhost:3306)/test")

const skipReason = "SKIPPED: pass -mysql flag to run this test\nexample: go test -mysql root:secret@tcp(localhost:3306)/test"

func TestDecimalRenderingAgainstLiveServer(t *testing.T) {
	if *mysqlDSN == "" {
		t.Skip(skipReason)
	}
	db, err := sql.Open("mysql", *mysqlDSN)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var got string
	if err := db.QueryRow("SELECT CAST(-123.45 AS DECIMAL(5,2))").Scan(&got); err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != "-123.45" {
		t.Fatalf("server rendered %q, want -123.45 (sanity check for the decoder's own NEWDECIMAL rendering)", got)
	}

	raw := encodeNewDecimalForTest(t, "123.45", 5, 2)
	for i := range raw {
		raw[i] ^= 0xff
	}
	d, err := decodeNewDecimal(raw, 5, 2)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Text != got {
		t.Fatalf("decoder rendered %q, server rendered %q", d.Text, got)
	}
}
