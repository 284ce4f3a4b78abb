package main

import (
	"flag"
	"inbox-lab/repositories"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// Dumps the inbox records of a badger directory. Stop the server first: badger
// holds an exclusive lock on its directory.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// conv: msg: cursor: member: set:
	prefix := flag.String("prefix", "", "Prefix to scan, everything when empty")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "At", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = repositories.Inspect(db, *prefix, func(row repositories.Row) error {
		at := ""
		if !row.At.IsZero() {
			at = row.At.Local().Format(time.DateTime)
		}
		table.Append([]string{row.Key, row.Kind, at, row.Detail})
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}
