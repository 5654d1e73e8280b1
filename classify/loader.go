package classify

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"replydesk/domain"
	"replydesk/errors"
)

// KeywordLoader reads per-category keyword lists from embedded files.
// Each file maps to one category through its name ("business.txt").
type KeywordLoader struct {
	fs embed.FS
}

func NewKeywordLoader(f embed.FS) *KeywordLoader {
	return &KeywordLoader{fs: f}
}

// LoadSets scans the given directory path in the embedded FS and parses
// each .txt file into a deduplicated keyword list for its category.
func (l *KeywordLoader) LoadSets(path string) (map[domain.Category][]string, error) {
	entries, err := fs.ReadDir(l.fs, path)
	if err != nil {
		return nil, err
	}

	sets := make(map[domain.Category][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		category := domain.Category(strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := l.fs.ReadFile(path + "/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// Use a scanner to handle different line endings (\n vs \r\n) correctly
		// ⚠️Don't use strings.Split
		unique := make(map[string]struct{})
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if line != "" {
				unique[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}

		words := make([]string, 0, len(unique))
		for w := range unique {
			words = append(words, w)
		}
		sets[category] = words
	}

	if len(sets) == 0 {
		return nil, errors.ErrEmptyKeywords
	}
	return sets, nil
}
