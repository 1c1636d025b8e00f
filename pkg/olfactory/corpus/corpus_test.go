package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
)

func TestReadRecords(t *testing.T) {
	input := `Name,Description,Notes
Morning,A fresh citrus morning,"Bergamot, Lemon ,"
Broken,only two fields
Night,Dark woods,
Garden,Rose garden,"Rose,Jasmine",extra
`
	records, report, err := ReadRecords(strings.NewReader(input), Options{Encoding: EncodingUTF8})
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if report.Rows != 4 || report.Skipped != 2 {
		t.Errorf("report = %+v, want 4 rows / 2 skipped", report)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Description != "A fresh citrus morning" {
		t.Errorf("description = %q", records[0].Description)
	}
	if !reflect.DeepEqual(records[0].Notes, []string{"Bergamot", "Lemon"}) {
		t.Errorf("notes = %v", records[0].Notes)
	}
	if len(records[1].Notes) != 0 {
		t.Errorf("empty notes field should give no notes, got %v", records[1].Notes)
	}
}

func TestReadRecordsLatin1(t *testing.T) {
	// "Café" with é as the single latin-1 byte 0xE9
	input := []byte("Description,Notes\nCaf\xe9 au lait,Coffee\n")
	records, _, err := ReadRecords(strings.NewReader(string(input)), Options{})
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 1 || records[0].Description != "Café au lait" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestReadRecordsByteOrderMark(t *testing.T) {
	input := "\xef\xbb\xbfDescription,Notes\nCaf\xc3\xa9 au lait,Coffee\n"
	for _, enc := range []string{"", EncodingLatin1, EncodingWin1252, EncodingUTF8} {
		records, _, err := ReadRecords(strings.NewReader(input), Options{Encoding: enc})
		if err != nil {
			t.Fatalf("encoding %q: ReadRecords: %v", enc, err)
		}
		if len(records) != 1 || records[0].Description != "Café au lait" {
			t.Errorf("encoding %q: unexpected records %+v", enc, records)
		}
	}
}

func TestReadRecordsHeaderErrors(t *testing.T) {
	_, _, err := ReadRecords(strings.NewReader(""), Options{})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("empty input: expected ErrInvalidInput, got %v", err)
	}

	_, _, err = ReadRecords(strings.NewReader("Text,Notes\nx,y\n"), Options{})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("missing column: expected ErrInvalidInput, got %v", err)
	}

	_, _, err = ReadRecords(strings.NewReader("Description,Notes\n"), Options{Encoding: "ebcdic"})
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("bad encoding: expected ErrInvalidConfig, got %v", err)
	}
}

func TestReadCategoryTable(t *testing.T) {
	input := `Category;Note Name
CITRUS SMELLS;Bergamot
CITRUS SMELLS;Lemon
FRUITS, VEGETABLES AND NUTS;Fig
WOODS AND MOSSES;Cedar;oops
`
	table, report, err := ReadCategoryTable(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("ReadCategoryTable: %v", err)
	}
	if report.Skipped != 1 {
		t.Errorf("expected 1 skipped row, got %d", report.Skipped)
	}
	if got := table.Notes("CITRUS SMELLS"); !reflect.DeepEqual(got, []string{"Bergamot", "Lemon"}) {
		t.Errorf("citrus notes = %v", got)
	}
	if got := table.Notes("FRUITS VEGETABLES AND NUTS"); len(got) != 1 || got[0] != "Fig" {
		t.Errorf("fruit notes = %v", got)
	}
	if len(table.Notes("WOODS AND MOSSES")) != 0 {
		t.Error("malformed row should not register notes")
	}
}

func TestReadCategoryTableUnknownLabel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	input := `Category;Note Name
CITRUS SMELLS;Lemon
FLOWERZ;Rose
FLOWERZ;Peony
`
	table, _, err := ReadCategoryTable(strings.NewReader(input), Options{Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("ReadCategoryTable: %v", err)
	}
	if got := table.Notes("FLOWERZ"); len(got) != 2 {
		t.Errorf("unknown label should still be kept, got %v", got)
	}
	warned := logs.FilterMessage("unknown note category").All()
	if len(warned) != 1 {
		t.Fatalf("expected one warning, got %d", len(warned))
	}
	if got := warned[0].ContextMap()["category"]; got != "FLOWERZ" {
		t.Errorf("warned about %v", got)
	}
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "training_set.csv")
	catPath := filepath.Join(dir, "note_categories.csv")
	if err := os.WriteFile(corpusPath, []byte("Description,Notes\nSmoke,\"Birch, Tar\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(catPath, []byte("Category;Note Name\nSPICES;Clove\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	records, _, err := ReadRecordsFile(corpusPath, Options{})
	if err != nil || len(records) != 1 {
		t.Fatalf("ReadRecordsFile: %v %+v", err, records)
	}
	table, _, err := ReadCategoryTableFile(catPath, Options{})
	if err != nil || table.Len() != 1 {
		t.Fatalf("ReadCategoryTableFile: %v", err)
	}
	if _, _, err := ReadRecordsFile(filepath.Join(dir, "missing.csv"), Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSplitNotes(t *testing.T) {
	got := SplitNotes(" Rose, ,Jasmine ,")
	if !reflect.DeepEqual(got, []string{"Rose", "Jasmine"}) {
		t.Errorf("got %v", got)
	}
	if len(SplitNotes("")) != 0 {
		t.Error("empty string should give no notes")
	}
}
