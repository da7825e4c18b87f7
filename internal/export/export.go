// Package export writes the inventory as CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/five82/larder/internal/inventory"
)

// DefaultFilename is used when WriteFile is given an empty name.
const DefaultFilename = "inventory.csv"

// Header is the first record of every export.
var Header = []string{"Name", "Brand", "Quantity", "Amount in Inventory", "Expiry Date"}

// Encode writes entries to w in the order given. Values come from the view
// projection, so missing brands and expiry dates carry their display text.
func Encode(w io.Writer, entries []inventory.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for row := range inventory.Rows(entries) {
		record := []string{row.Name, row.Brand, row.Quantity, strconv.Itoa(row.Count), row.Expiry}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// String returns the CSV text for entries.
func String(entries []inventory.Entry) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, entries); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteFile writes entries to dir/name and returns the final path. The file
// appears complete or not at all.
func WriteFile(dir, name string, entries []inventory.Entry) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultFilename
	}
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, entries); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}
	return path, nil
}
