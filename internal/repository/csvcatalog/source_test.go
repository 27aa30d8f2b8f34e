package csvcatalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `p_id,name,brand,price,avg_rating,description,p_attributes,img,colour
p1,Slim Jeans,DenimCo,1499,4.3,Blue slim fit,"fit:slim",https://img/p1.jpg,Blue
p2,Plain Tee,BasicWear,499,4.0,,,,White
`

func TestParse_MapsColumns(t *testing.T) {
	rows, skipped, err := parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skipped != 0 {
		t.Errorf("expected no skipped records, got %d", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.ID != "p1" || first.Name != "Slim Jeans" || first.Brand != "DenimCo" {
		t.Errorf("unexpected identity fields: %+v", first)
	}
	if first.Price != "1499" || first.Rating != "4.3" {
		t.Errorf("unexpected numeric fields: price %q rating %q", first.Price, first.Rating)
	}
	if first.Color != "Blue" || first.ImageURL != "https://img/p1.jpg" {
		t.Errorf("unexpected optional fields: %+v", first)
	}
}

func TestParse_HeaderCaseInsensitive(t *testing.T) {
	csv := "P_ID,NAME,Brand,Price,Avg_Rating\np1,Jeans,B,100,4\n"
	rows, _, err := parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "p1" {
		t.Fatalf("expected 1 row keyed by lowercased header, got %v", rows)
	}
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	csv := "p_id,name,brand,price\np1,Jeans,B,100\n"
	_, _, err := parse(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected error for missing avg_rating column")
	}
}

func TestParse_ShortRecordYieldsEmptyFields(t *testing.T) {
	csv := "p_id,name,brand,price,avg_rating,colour\np1,Jeans,B,100,4\n"
	rows, _, err := parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rows[0].Color != "" {
		t.Errorf("missing trailing column must read as empty, got %q", rows[0].Color)
	}
}

func TestRows_LocalPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src := New(Config{Path: path})
	rows, err := src.Rows(context.Background())
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestRows_DownloadsAndCaches(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer ts.Close()

	src := New(Config{URL: ts.URL, CacheDir: t.TempDir()})

	rows, err := src.Rows(context.Background())
	if err != nil {
		t.Fatalf("first Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if _, err := src.Rows(context.Background()); err != nil {
		t.Fatalf("second Rows: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected the cached file to serve the second call, got %d fetches", hits)
	}
}

func TestRows_DownloadFailureLeavesNoCache(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	dir := t.TempDir()
	src := New(Config{URL: ts.URL, CacheDir: dir})

	if _, err := src.Rows(context.Background()); err == nil {
		t.Fatal("expected error on upstream failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "catalog.csv")); !os.IsNotExist(err) {
		t.Error("failed download must not leave a cache file behind")
	}
}

func TestRows_NoSourceConfigured(t *testing.T) {
	src := New(Config{})
	if _, err := src.Rows(context.Background()); err == nil {
		t.Fatal("expected error when neither path nor url is configured")
	}
}
