package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cognicore/olfactory/pkg/olfactory/catalog"
	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
)

// Column names as they appear in the source files.
const (
	DescriptionColumn = "Description"
	NotesColumn       = "Notes"
	CategoryColumn    = "Category"
	NoteNameColumn    = "Note Name"
)

// Supported encodings.
const (
	EncodingLatin1  = "latin-1"
	EncodingWin1252 = "windows-1252"
	EncodingUTF8    = "utf-8"
)

// Record is one labeled training row.
type Record struct {
	Description string
	Notes       []string
}

// Options controls how tabular files are read.
type Options struct {
	Encoding string // defaults to latin-1
	Logger   *zap.Logger
}

// Report summarizes a read.
type Report struct {
	Rows    int
	Skipped int
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// decode wraps r in the decoder for encoding. A leading byte order mark
// switches to the encoding it names and is dropped, whatever the configured
// fallback.
func decode(r io.Reader, enc string) (io.Reader, error) {
	var fallback *encoding.Decoder
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", EncodingLatin1, "latin1", "iso-8859-1":
		fallback = charmap.ISO8859_1.NewDecoder()
	case EncodingWin1252, "cp1252":
		fallback = charmap.Windows1252.NewDecoder()
	case EncodingUTF8, "utf8":
		fallback = encoding.Nop.NewDecoder()
	default:
		return nil, fmt.Errorf("encoding %q: %w", enc, internalerr.ErrInvalidConfig)
	}
	return transform.NewReader(r, unicode.BOMOverride(fallback)), nil
}

// ReadRecords reads a comma-separated training corpus with Description and
// Notes columns. Notes are a comma-separated list inside one field.
// Malformed rows are skipped with a warning and counted in the report.
func ReadRecords(r io.Reader, opts Options) ([]Record, Report, error) {
	var records []Record
	report, err := readTable(r, ',', opts, []string{DescriptionColumn, NotesColumn}, func(fields []string) {
		records = append(records, Record{
			Description: fields[0],
			Notes:       SplitNotes(fields[1]),
		})
	})
	return records, report, err
}

// ReadRecordsFile opens path and calls ReadRecords.
func ReadRecordsFile(path string, opts Options) ([]Record, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, err
	}
	defer f.Close()
	return ReadRecords(f, opts)
}

// ReadCategoryTable reads a ';'-separated table with Category and Note Name
// columns, one row per pair. Labels outside the fixed categories are kept
// but logged once, since no mapping can point at them.
func ReadCategoryTable(r io.Reader, opts Options) (*catalog.Table, Report, error) {
	log := opts.logger()
	table := catalog.NewTable()
	unknown := make(map[string]bool)
	report, err := readTable(r, ';', opts, []string{CategoryColumn, NoteNameColumn}, func(fields []string) {
		label := catalog.CanonicalCategory(fields[0])
		if label != "" && !catalog.IsKnown(label) && !unknown[label] {
			unknown[label] = true
			log.Warn("unknown note category", zap.String("category", label))
		}
		table.Add(fields[0], fields[1])
	})
	if err != nil {
		return nil, report, err
	}
	return table, report, nil
}

// ReadCategoryTableFile opens path and calls ReadCategoryTable.
func ReadCategoryTableFile(path string, opts Options) (*catalog.Table, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, err
	}
	defer f.Close()
	return ReadCategoryTable(f, opts)
}

// SplitNotes splits a comma-separated note list, trimming each entry and
// dropping empty ones.
func SplitNotes(s string) []string {
	parts := strings.Split(s, ",")
	notes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			notes = append(notes, p)
		}
	}
	return notes
}

// readTable locates the wanted columns in the header row and calls emit with
// their values for every well-formed data row.
func readTable(r io.Reader, sep rune, opts Options, columns []string, emit func([]string)) (Report, error) {
	log := opts.logger()
	var report Report

	dec, err := decode(r, opts.Encoding)
	if err != nil {
		return report, err
	}
	cr := csv.NewReader(dec)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return report, fmt.Errorf("empty table: %w", internalerr.ErrInvalidInput)
		}
		return report, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndexes(header, columns)
	if err != nil {
		return report, err
	}
	width := len(header)

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Rows++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.Skipped++
				log.Warn("skipping malformed row", zap.Int("line", perr.Line), zap.Error(err))
				continue
			}
			return report, err
		}
		if len(row) != width {
			report.Skipped++
			line, _ := cr.FieldPos(0)
			log.Warn("skipping malformed row",
				zap.Int("line", line),
				zap.Int("fields", len(row)),
				zap.Int("want", width),
				zap.Error(internalerr.ErrMalformedRow))
			continue
		}
		fields := make([]string, len(idx))
		for i, col := range idx {
			fields[i] = row[col]
		}
		emit(fields)
	}

	if report.Skipped > 0 {
		log.Info("table read with skipped rows", zap.Int("rows", report.Rows), zap.Int("skipped", report.Skipped))
	}
	return report, nil
}

func columnIndexes(header, columns []string) ([]int, error) {
	idx := make([]int, len(columns))
	for i, want := range columns {
		idx[i] = -1
		for j, h := range header {
			h = strings.TrimSpace(h)
			if strings.EqualFold(h, want) {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("missing column %q: %w", want, internalerr.ErrInvalidInput)
		}
	}
	return idx, nil
}
