package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"replydesk/errors"
)

// QueueRow is one /debug/queue entry, decoded from a badger key.
type QueueRow struct {
	Key      string `json:"key"`
	Status   string `json:"status"`
	Received string `json:"received"`
	EntityID string `json:"entity_id"`
	Detail   string `json:"detail"`
}

type RowMapper func(key string, val []byte) QueueRow
type StatsProvider func() any

// StartDebugServer exposes the operational read surface on localhost:
// /debug/stats for the monitor snapshot, /debug/queue for a raw badger
// prefix listing. It never serves domain mutations.
func StartDebugServer(log *slog.Logger, db *badger.DB, port int, mapper RowMapper, stats StatsProvider) *http.Server {
	if mapper == nil {
		mapper = DefaultMapper
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, _ *http.Request) {
		var payload any
		if stats != nil {
			payload = stats()
		}
		writeJSON(w, payload)
	})

	mux.HandleFunc("/debug/queue", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		rows := make([]QueueRow, 0, 64)
		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					rows = append(rows, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})
		writeJSON(w, rows)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}

	go func() {
		log.Info("Debug server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("Debug server stopped", "error", err)
		}
	}()
	return server
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DefaultMapper understands the msg:{status}:{unixnano}:{id} key layout;
// anything else comes back as a bare row with its size.
func DefaultMapper(key string, val []byte) QueueRow {
	parts := strings.Split(key, ":")
	row := QueueRow{
		Key:    key,
		Detail: "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	if len(parts) >= 4 {
		row.Status = parts[1]
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			row.Received = time.Unix(0, tsNano).UTC().Format(time.RFC3339)
		}
		row.EntityID = parts[3]
		if len(row.EntityID) > 8 {
			row.EntityID = row.EntityID[:8]
		}
	}
	return row
}
