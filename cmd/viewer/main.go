package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"slack-chat/domain"
	"slack-chat/internal"
)

// viewer dumps the store as a table, or serves the HTML inspector with
// -serve when a browser is more convenient. Always read-only.
func main() {
	dbPath := flag.String("db", "/tmp/badger", "Path to badger DB")
	// Par défaut on scanne les messages pour éviter les index msgid:
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	serve := flag.Bool("serve", false, "Serve the HTML inspector instead of printing a table")
	port := flag.Int("port", 8081, "Inspector port when -serve is set")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if *serve {
		// We provide minimal stats since the server isn't running here
		stats := func() map[string]any {
			return map[string]any{
				"Status": "Viewer Mode (Read-Only)",
				"Time":   time.Now().Format(time.RFC822),
			}
		}
		fmt.Printf("Viewer started at http://localhost:%d/inspect\n", *port)
		internal.Inspect(db, *port, "/inspect", internal.DefaultMapper, stats, *prefix, nil)
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Namespace", "Detail"})
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

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()

			// Sécurité : on ignore explicitement les index secondaires
			key := string(item.Key())
			if strings.HasPrefix(key, "msgid:") ||
				strings.HasPrefix(key, "useremail:") ||
				strings.HasPrefix(key, "channelname:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				table.Append(rowFor(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func rowFor(key string, val []byte) []string {
	row := internal.DefaultMapper(key, val)
	detail := row.Detail

	switch row.Type {
	case "MESSAGE":
		var message domain.Message
		if err := json.Unmarshal(val, &message); err == nil {
			detail = message.Content
			if message.Lang != "" {
				detail = fmt.Sprintf("[%s] %s", message.Lang, detail)
			}
			row.Type = color.Green.Render(row.Type)
		}
	case "USER":
		var user domain.User
		if err := json.Unmarshal(val, &user); err == nil {
			detail = user.DisplayName
			if user.Online {
				detail += " " + color.Green.Render("(online)")
			}
			row.Type = color.Cyan.Render(row.Type)
		}
	case "CHANNEL":
		var channel domain.Channel
		if err := json.Unmarshal(val, &channel); err == nil {
			detail = fmt.Sprintf("%s (%d members)", channel.Name, channel.MemberCount())
			row.Type = color.Yellow.Render(row.Type)
		}
	}

	return []string{row.Key, row.Type, row.Timestamp, row.EntityID, row.Namespace, detail}
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// Si corruption détectée, essaie un open en write pour truncate
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			// Ferme et réouvre en read-only
			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
