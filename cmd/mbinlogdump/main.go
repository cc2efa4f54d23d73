// Command mbinlogdump is a thin CLI wrapper around package binlog (spec
// §6's external-collaborator surface: argument parsing, file opening,
// output formatting, and the two auxiliary mapping files are all
// outside the decoder's core scope).
package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/santhosh-tekuri/mbinlog"
)

var (
	testMode        bool
	fieldTypesPath  string
	metaBlockPath   string
	timezoneOffset  time.Duration
	tolerantVars    bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("mbinlogdump failed")
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mbinlogdump <binlog-file>",
		Short: "Decode a MariaDB binlog file into human-readable events",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	cmd.Flags().BoolVar(&testMode, "test", false, "decode a single seeded event instead of the whole file")
	cmd.Flags().StringVar(&fieldTypesPath, "field-types", "field_types.txt", "path to the field-type name/id mapping file")
	cmd.Flags().StringVar(&metaBlockPath, "metablock-mapping", "metablock_mapping.txt", "path to the column-type/metadata-width mapping file")
	cmd.Flags().DurationVar(&timezoneOffset, "timezone-offset", 8*time.Hour, "offset used to render TIMESTAMP2 values")
	cmd.Flags().BoolVar(&tolerantVars, "tolerant-status-vars", false, "attenuate unknown Query status-variable codes to a warning instead of aborting")

	viper.SetEnvPrefix("MBINLOG")
	viper.AutomaticEnv()
	viper.BindPFlag("timezone-offset", cmd.Flags().Lookup("timezone-offset"))
	viper.BindPFlag("tolerant-status-vars", cmd.Flags().Lookup("tolerant-status-vars"))

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]

	// The field-type name table is an external-collaborator concern
	// (spec §6): it names column-type codes for display, it does not
	// change how the decoder parses them, so it is only consulted by
	// printEvent below, never by package binlog itself.
	fieldTypes, err := binlog.LoadFieldTypeCatalogue(fieldTypesPath)
	if err != nil {
		return err
	}
	metaCat, err := binlog.LoadMetaBlockMapping(metaBlockPath)
	if err != nil {
		return err
	}

	data, err := binlog.ReadFile(path)
	if err != nil {
		return err
	}

	dec := binlog.NewDecoder()
	dec.MetaBlockCatalogue = metaCat
	dec.TimezoneOffset = viper.GetDuration("timezone-offset")
	dec.TolerantStatusVars = viper.GetBool("tolerant-status-vars")

	if testMode {
		return runTestMode(dec, data, fieldTypes)
	}

	events, err := dec.DecodeAll(data)
	if err != nil {
		return err
	}
	for _, e := range events {
		printEvent(e, fieldTypes)
	}
	return nil
}

// printEvent renders one decoded event, resolving RowsEvent column
// types through the field-type name table when one was loaded.
func printEvent(e binlog.Event, fieldTypes *binlog.FieldTypeCatalogue) {
	re, ok := e.Body.(binlog.RowsEvent)
	if !ok || fieldTypes == nil {
		fmt.Printf("%s @ %d: %+v\n", e.Header.EventType, e.Header.NextEventPosition, e.Body)
		return
	}
	fmt.Printf("%s @ %d: table=%s.%s\n", e.Header.EventType, e.Header.NextEventPosition,
		re.TableMap.SchemaName, re.TableMap.TableName)
	for i, col := range re.TableMap.Columns {
		name, ok := fieldTypes.IDToName[int(col.Type)]
		if !ok {
			name = col.Type.String()
		}
		fmt.Printf("  col[%d] type=%s\n", i, name)
	}
}

// runTestMode implements spec §6's single-event-dump mode: seed a
// predetermined Table-Map event, then decode one event at a fixed
// offset, mirroring original_source/src/main.rs's `cfg!(feature =
// "test")` branch.
func runTestMode(dec *binlog.Decoder, data []byte, fieldTypes *binlog.FieldTypeCatalogue) error {
	seeded := binlog.TableMapEvent{
		TableID:    230,
		SchemaName: "test1223",
		TableName:  "t4",
		Columns: []binlog.Column{
			{Ordinal: 0, Type: binlog.TypeLong},
			{Ordinal: 1, Type: binlog.TypeBlob, Meta: []byte{2}},
			{Ordinal: 2, Type: binlog.TypeBlob, Meta: []byte{2}},
			{Ordinal: 3, Type: binlog.TypeVarchar, Meta: []byte{100, 0}},
		},
	}
	dec.SeedTableMapForTest(seeded)

	const fixedOffset = 75227
	if fixedOffset >= len(data) {
		return fmt.Errorf("file too short for --test mode fixed offset %d", fixedOffset)
	}
	e, err := dec.DecodeOneAt(data, uint32(fixedOffset))
	if err != nil {
		return err
	}
	printEvent(e, fieldTypes)
	return nil
}
