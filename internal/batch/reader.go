package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ReadBatchFile reads the words listed in filename.
// See ReadWords for the format.
func ReadBatchFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file %s: %w", filename, err)
	}
	return words, nil
}

// ReadWords reads one word per line. Blank lines and lines starting with
// '#' are skipped, and a word listed twice is only returned once. Words
// are trimmed and brought to NFC so that duplicates match regardless of
// how the file was encoded.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := norm.NFC.String(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
