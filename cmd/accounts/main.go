package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"private-chat/repositories"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// accounts prints the stored accounts. The server must be stopped, Badger
// holds a directory lock.
func main() {
	defaultPath := database.DefaultPath
	if path := os.Getenv("BADGER_FILEPATH"); path != "" {
		defaultPath = path
	}
	dbPath := flag.String("db", defaultPath, "Path to badger DB")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithReadOnly(true).WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db).ListUsers()
	if err != nil {
		log.Fatal("Error while listing accounts: ", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Username", "ID", "Created At"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, user := range users {
		table.Append([]string{user.Username, user.ID, user.CreatedAt.Format(time.RFC3339)})
	}
	table.Render()
	fmt.Printf("\n%d account(s) in %s\n", len(users), *dbPath)
}
