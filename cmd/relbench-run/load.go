package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kailas-cloud/relbench/internal/domain"
	domdoc "github.com/kailas-cloud/relbench/internal/domain/document"
	corpusuc "github.com/kailas-cloud/relbench/internal/usecase/corpus"
)

// loadCorpus reads a JSON array of records, or an object with a "documents"
// array. Every record must be valid.
func loadCorpus(path string) (domdoc.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}

	corpus, results := corpusuc.Parse(records)
	for _, r := range results {
		if r.Err() != nil {
			return nil, fmt.Errorf("corpus %s record %d: %w", path, r.Index(), r.Err())
		}
	}
	return corpus, nil
}

func decodeRecords(data []byte) ([]map[string]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Documents []map[string]string `json:"documents"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		return wrapped.Documents, nil
	}
	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// loadQueries reads one query per line. Blank lines and lines starting with
// '#' are skipped; duplicates are kept.
func loadQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	defer func() { _ = f.Close() }()

	var queries []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read queries %s: %w", path, err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no queries in %s: %w", path, domain.ErrInvalidInput)
	}
	return queries, nil
}
