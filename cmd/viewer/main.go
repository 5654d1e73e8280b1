package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"replydesk/domain"
	"replydesk/repositories"
)

// Config keeps the viewer independent from the agent's full settings:
// only the database path matters here.
type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	// VIEWER_COLOURS enables colorized statuses for readability
	Colours bool `envconfig:"VIEWER_COLOURS" default:"true"`
	Preview int  `envconfig:"VIEWER_PREVIEW" default:"48"`
}

func main() {
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg: or resp:)")
	flag.Parse()

	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Read-only mode; BypassLockGuard allows opening while the agent holds the lock
	opts := badger.DefaultOptions(cfg.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Source", "Sender", "Category", "Status", "Received", "Content"})
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

	counts := map[string]int{}

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Secondary indexes hold key pointers, nothing to display
			if strings.HasPrefix(key, "idx:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				row, status, decodeErr := toRow(key, v, cfg)
				if decodeErr != nil {
					// Log and keep going instead of aborting the whole listing
					fmt.Printf("Error unmarshaling key %s: %v\n", key, decodeErr)
					return nil
				}
				counts[status]++
				table.Append(row)
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
	printCounts(counts, cfg.Colours)
}

func toRow(key string, value []byte, cfg Config) ([]string, string, error) {
	if strings.HasPrefix(key, "resp:") {
		var disk repositories.DiskResponse
		if err := json.Unmarshal(value, &disk); err != nil {
			return nil, "", err
		}
		status := "draft"
		if disk.IsSent {
			status = "sent"
		}
		return []string{
			shortKey(key),
			"-",
			"-",
			disk.Kind,
			renderStatus(status, cfg.Colours),
			disk.CreatedAt.Format("15:04:05"),
			preview(disk.Content, cfg.Preview),
		}, status, nil
	}

	var disk repositories.DiskMessage
	if err := json.Unmarshal(value, &disk); err != nil {
		return nil, "", err
	}
	return []string{
		shortKey(key),
		disk.Source,
		disk.Sender,
		disk.Category,
		renderStatus(disk.Status, cfg.Colours),
		disk.ReceivedAt.Format("15:04:05"),
		preview(disk.Content, cfg.Preview),
	}, disk.Status, nil
}

func preview(content string, limit int) string {
	runes := []rune(strings.ReplaceAll(content, "\n", " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}

// shortKey keeps the prefix, the grouping segment and 8 chars of the id.
func shortKey(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 4 {
		return key
	}
	id := parts[3]
	if len(id) > 8 {
		id = id[:8]
	}
	return parts[0] + ":" + parts[1] + ":" + id
}

func renderStatus(status string, colours bool) string {
	if !colours {
		return status
	}
	switch domain.Status(status) {
	case domain.StatusPending:
		return color.New(color.FgYellow).Render(status)
	case domain.StatusProcessing:
		return color.New(color.FgCyan).Render(status)
	case domain.StatusAnswered:
		return color.New(color.FgGreen).Render(status)
	case domain.StatusIgnored:
		return color.New(color.FgGray).Render(status)
	}
	return status
}

func printCounts(counts map[string]int, colours bool) {
	if len(counts) == 0 {
		fmt.Println("No entries found")
		return
	}

	statuses := lo.Keys(counts)
	slices.Sort(statuses)

	fmt.Println()
	for _, status := range statuses {
		fmt.Printf("%-12s %d\n", renderStatus(status, colours), counts[status])
	}
}
