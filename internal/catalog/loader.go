// Package catalog reads the movie dataset and turns each row into an indexable document.
package catalog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"cinechat/internal/domain"
)

var requiredColumns = []string{
	"title", "director", "actors", "genres", "plot",
	"id", "imdb_id", "poster_path", "year", "rating",
}

// LoadFile reads a catalog CSV from disk.
func LoadFile(path string) ([]domain.CatalogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer f.Close()
	return Load(f)
}

// Load parses catalog rows. The header must contain every required column;
// summary is optional. Record ids must be non-empty and unique.
func Load(r io.Reader) ([]domain.CatalogRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read catalog header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("catalog missing columns: %s", strings.Join(missing, ", "))
	}

	var records []domain.CatalogRecord
	seen := make(map[string]int)
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "read catalog row %d", line)
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		rec := domain.CatalogRecord{
			ID:         strings.TrimSpace(get("id")),
			Title:      get("title"),
			Director:   get("director"),
			Actors:     get("actors"),
			Genres:     get("genres"),
			Plot:       get("plot"),
			IMDbID:     strings.TrimSpace(get("imdb_id")),
			PosterPath: strings.TrimSpace(get("poster_path")),
			Summary:    get("summary"),
		}
		if rec.ID == "" {
			return nil, errors.Errorf("catalog row %d: empty id", line)
		}
		if prev, dup := seen[rec.ID]; dup {
			return nil, errors.Errorf("catalog row %d: duplicate id %q (first seen on row %d)", line, rec.ID, prev)
		}
		seen[rec.ID] = line
		if rec.Year, err = parseYear(get("year")); err != nil {
			return nil, errors.Wrapf(err, "catalog row %d: year", line)
		}
		if rec.Rating, err = parseFloat(get("rating")); err != nil {
			return nil, errors.Wrapf(err, "catalog row %d: rating", line)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Documents converts records to indexed documents in input order.
func Documents(records []domain.CatalogRecord) []domain.IndexedDocument {
	docs := make([]domain.IndexedDocument, len(records))
	for i, r := range records {
		docs[i] = domain.IndexedDocument{ID: r.ID, Body: Body(r.Title, r.Summary), Metadata: r.Metadata()}
	}
	return docs
}

// Body renders the embedded text: the title plus the first three quarters of
// the summary, counted in characters and cut without regard to word boundaries.
func Body(title, summary string) string {
	return "Title: " + title + "\nSummary: " + TruncateSummary(summary)
}

// TruncateSummary keeps floor(len*3/4) characters of s.
func TruncateSummary(s string) string {
	runes := []rune(s)
	return string(runes[:len(runes)*3/4])
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
