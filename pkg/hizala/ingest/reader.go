package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const maxLineSize = 1 << 20

// ReadEntries parses TAB-separated token/lemma records.
//
// Blank lines are skipped, a line with a single field becomes a token with an
// empty lemma and fields after the second are ignored. Malformed lines never
// fail the read; only I/O errors do.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		token, lemma, _ := strings.Cut(line, "\t")
		if i := strings.IndexByte(lemma, '\t'); i >= 0 {
			lemma = lemma[:i]
		}
		entries = append(entries, Entry{Token: token, Lemma: lemma})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadFile opens path and parses it with ReadEntries.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, nil
}
