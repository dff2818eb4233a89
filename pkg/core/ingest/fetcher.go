// Package ingest fetches the raw statement rows of a security from local
// files, an HTTP market-data API or HTML statement pages. Everything it
// returns is untyped; normalize.Normalize is the only consumer.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"consensus_valuation/pkg/core/normalize"
	"consensus_valuation/pkg/core/utils"
)

// ErrNotFound is returned when a source holds nothing at all for a ticker.
var ErrNotFound = errors.New("ticker not found")

// Source fetches every row set available for a ticker. Missing categories
// are returned empty; deciding whether that is fatal is left to the
// normalizer.
type Source interface {
	Fetch(ctx context.Context, ticker string) (normalize.RawDataset, error)
}

// categoryFiles maps each category to its file base name.
var categoryFiles = map[normalize.Category]string{
	normalize.CategoryQuote:     "quote",
	normalize.CategoryIncome:    "income",
	normalize.CategoryBalance:   "balance",
	normalize.CategoryCashFlow:  "cash_flow",
	normalize.CategoryDividends: "dividends",
}

var categories = []normalize.Category{
	normalize.CategoryQuote,
	normalize.CategoryIncome,
	normalize.CategoryBalance,
	normalize.CategoryCashFlow,
	normalize.CategoryDividends,
}

var fileExtensions = []string{".json", ".hjson", ".html"}

// DirSource reads datasets from disk. A ticker is either one file
// <dir>/<TICKER>.json holding the whole dataset, or a directory
// <dir>/<TICKER>/ with one file per category (quote, income, balance,
// cash_flow, dividends; .json, .hjson or an .html page of tables). Files
// are decoded leniently.
type DirSource struct {
	dir string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, ticker string) (normalize.RawDataset, error) {
	if err := ctx.Err(); err != nil {
		return normalize.RawDataset{}, err
	}
	name := normalize.CanonicalTicker(ticker)
	if name == "" {
		return normalize.RawDataset{}, fmt.Errorf("empty ticker")
	}

	// 1. Single dataset file
	for _, ext := range fileExtensions[:2] {
		path := filepath.Join(s.dir, name+ext)
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var ds normalize.RawDataset
		if _, err := utils.SmartParse(lenient(ext, content), &ds); err != nil {
			return normalize.RawDataset{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return ds, nil
	}

	// 2. One file per category
	dir := filepath.Join(s.dir, name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return normalize.RawDataset{}, fmt.Errorf("%w: %s in %s", ErrNotFound, name, s.dir)
	}
	var ds normalize.RawDataset
	for _, c := range categories {
		rows, err := readCategory(dir, categoryFiles[c])
		if err != nil {
			return normalize.RawDataset{}, err
		}
		ds = ds.WithRows(c, rows)
	}
	return ds, nil
}

// readCategory decodes the first existing <base>.json / .hjson / .html file.
// A missing file yields no rows. A file may hold a list of rows or a single
// row object.
func readCategory(dir, base string) ([]normalize.RawRow, error) {
	for _, ext := range fileExtensions {
		path := filepath.Join(dir, base+ext)
		content, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var rows []normalize.RawRow
		if ext == ".html" {
			rows, err = RowsFromHTML(bytes.NewReader(content))
		} else {
			rows, err = decodeRows(lenient(ext, content))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return rows, nil
	}
	return nil, nil
}

// lenient converts .hjson files to JSON up front. Everything else is handed
// to SmartParse as is.
func lenient(ext string, content []byte) string {
	if ext != ".hjson" {
		return string(content)
	}
	if converted, err := utils.ParseHJSON(string(content)); err == nil {
		return converted
	}
	return string(content)
}

// decodeRows accepts a row list, a single row object, or an envelope object
// holding the list under "results" or "data".
func decodeRows(content string) ([]normalize.RawRow, error) {
	var v interface{}
	if _, err := utils.SmartParse(content, &v); err != nil {
		return nil, err
	}
	return rowsFrom(v), nil
}

func rowsFrom(v interface{}) []normalize.RawRow {
	switch t := v.(type) {
	case []interface{}:
		rows := make([]normalize.RawRow, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]interface{}); ok {
				rows = append(rows, normalize.RawRow(m))
			}
		}
		return rows
	case map[string]interface{}:
		for _, envelope := range []string{"results", "data", "rows"} {
			if inner, ok := t[envelope]; ok {
				return rowsFrom(inner)
			}
		}
		return []normalize.RawRow{normalize.RawRow(t)}
	}
	return nil
}
