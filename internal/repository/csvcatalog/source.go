// Package csvcatalog fetches and parses the catalog CSV into raw rows.
// Normalization and validation happen downstream in the catalog store.
package csvcatalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartstyle-cloud/styledex/internal/domain/catalog"
)

// Source column names of the catalog dataset.
const (
	colID          = "p_id"
	colName        = "name"
	colBrand       = "brand"
	colPrice       = "price"
	colRating      = "avg_rating"
	colDescription = "description"
	colAttributes  = "p_attributes"
	colImage       = "img"
	colColor       = "colour"
)

// Source reads catalog rows from a local CSV file or a remote URL with an
// on-disk download cache.
type Source struct {
	url      string
	path     string
	cacheDir string
	client   *http.Client
	logger   *zap.Logger
}

// Config holds the row source settings. Path takes precedence over URL.
type Config struct {
	URL      string
	Path     string
	CacheDir string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// New creates a CSV catalog source.
func New(cfg Config) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		url:      cfg.URL,
		path:     cfg.Path,
		cacheDir: cfg.CacheDir,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Rows implements the catalog RowSource contract: it resolves the CSV
// location (local path, cached download, or fresh download) and parses it.
func (s *Source) Rows(ctx context.Context) ([]catalog.Row, error) {
	path, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, skipped, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	s.logger.Info("catalog csv parsed",
		zap.String("file", filepath.Base(path)),
		zap.Int("rows", len(rows)),
		zap.Int("skipped", skipped),
	)
	return rows, nil
}

// resolve returns the local path of the CSV, downloading it if needed.
func (s *Source) resolve(ctx context.Context) (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	if s.url == "" {
		return "", fmt.Errorf("catalog source: neither path nor url configured")
	}

	cached := filepath.Join(s.cacheDir, "catalog.csv")
	if st, err := os.Stat(cached); err == nil && st.Size() > 0 {
		return cached, nil
	}

	if err := s.download(ctx, cached); err != nil {
		return "", err
	}
	return cached, nil
}

func (s *Source) download(ctx context.Context, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(outPath), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch catalog csv: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch catalog csv: unexpected status %s", resp.Status)
	}

	// Write to a temp file first: a failed download must not leave a
	// truncated catalog.csv behind for the next resolve to pick up.
	tmp, err := os.CreateTemp(filepath.Dir(outPath), "catalog-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	written, err := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write catalog csv: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close catalog csv: %w", closeErr)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("move catalog csv: %w", err)
	}

	s.logger.Info("catalog csv downloaded",
		zap.String("url", s.url),
		zap.Int64("bytes", written),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// parse reads the CSV into raw rows. The header row maps column names to
// positions; records too short for a required column are skipped and
// counted, not fatal.
func parse(r io.Reader) ([]catalog.Row, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colID, colName, colBrand, colPrice, colRating} {
		if _, ok := cols[required]; !ok {
			return nil, 0, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []catalog.Row
	skipped := 0
	for {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, skipped, fmt.Errorf("read record: %w", err)
		}

		rows = append(rows, catalog.Row{
			ID:          field(record, colID),
			Name:        field(record, colName),
			Brand:       field(record, colBrand),
			Description: field(record, colDescription),
			Attributes:  field(record, colAttributes),
			Price:       field(record, colPrice),
			Rating:      field(record, colRating),
			ImageURL:    field(record, colImage),
			Color:       field(record, colColor),
		})
	}

	return rows, skipped, nil
}
