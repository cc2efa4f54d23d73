/*
Package binlog decodes a MariaDB binary replication log (binlog) file
into a stream of typed events.

It is a read-only decoder: it does not connect to a server, stream
events live, or write anything back. Given a file on disk:

	data, err := binlog.ReadFile("mariadb-bin.000001")
	if err != nil {
		return err
	}
	dec := binlog.NewDecoder()
	events, err := dec.DecodeAll(data)
	if err != nil {
		return err
	}
	for _, e := range events {
		switch body := e.Body.(type) {
		case binlog.RowsEvent:
			for _, row := range body.After {
				fmt.Printf("table=%s.%s values=%v\n",
					body.TableMap.SchemaName, body.TableMap.TableName, row.Values)
			}
		case binlog.QueryEvent:
			fmt.Printf("query: %s\n", body.Query)
		}
	}

Table-Map events (type 19) are tracked internally in a registry keyed
by table id; row events (types 23/24/25) look themselves up in it, so
events must be decoded in file order for row events to resolve
correctly — exactly the order DecodeAll processes them in.

See cmd/mbinlogdump for a small CLI built on this package.
*/
package binlog
