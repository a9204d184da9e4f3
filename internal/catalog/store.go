// Package catalog owns the on-disk CSV representation of the works
// catalog: tolerant parsing, schema normalization and atomic persistence.
// The file is hand-edited by non-technical users, so the loader is
// permissive on read (multiple encodings and delimiters) and strict on
// write (fixed schema, temp-file-plus-rename).
package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"lodgeportal/internal/entity"
)

// RequiredColumns is the canonical header, in order. Columns missing from
// the source are synthesized as empty strings; extra columns are
// discarded on load.
var RequiredColumns = []string{"id", "titulo", "autor", "genero", "descricao", "grau_minimo", "arquivo", "capa"}

// ErrMalformedCatalog means no (encoding, delimiter) candidate could
// parse the file. Callers degrade to an empty table and must never write
// over the source in that state.
var ErrMalformedCatalog = errors.New("catalog file is not parseable")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads the catalog at path. An absent or zero-length file is
// replaced by an empty template (header only) which is also returned.
// Parsing tries encodings {utf-8, utf-8 BOM, latin-1} against delimiters
// {auto-detect, comma, semicolon, tab}; the first success wins and is
// logged so silent heuristics stay observable.
func Load(path string) ([]entity.Work, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0):
		if err := Persist(nil, path); err != nil {
			return nil, err
		}
		return []entity.Work{}, nil
	case err != nil:
		return nil, err
	}

	for _, enc := range encodingCandidates {
		text, ok := enc.decode(data)
		if !ok {
			continue
		}
		for _, delim := range delimiterCandidates {
			comma := delim.rune
			if comma == 0 {
				comma = detectDelimiter(text)
			}
			records, err := parseCSV(text, comma)
			if err != nil {
				continue
			}
			rows := projectRecords(records)
			log.Printf("catalog: parsed path=%s encoding=%s delimiter=%s rows=%d", path, enc.name, delim.name, len(rows))
			return rows, nil
		}
	}
	return []entity.Work{}, ErrMalformedCatalog
}

// NextID returns max(numeric ids)+1, or 1 for an empty or fully
// non-numeric table.
func NextID(rows []entity.Work) int {
	max := 0
	for _, w := range rows {
		n, err := strconv.Atoi(strings.TrimSpace(w.ID))
		if err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// Append returns a new slice with w added under the next id, and the row
// as stored. It does not persist.
func Append(rows []entity.Work, w entity.Work) ([]entity.Work, entity.Work) {
	w.ID = strconv.Itoa(NextID(rows))
	out := make([]entity.Work, 0, len(rows)+1)
	out = append(out, rows...)
	out = append(out, w)
	return out, w
}

// Persist writes the table atomically: serialize to a temp sibling, fsync,
// then rename over the destination. A reader never observes a partial
// file. Parent directories are created as needed.
func Persist(rows []entity.Work, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(RequiredColumns); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	for _, row := range rows {
		record := []string{row.ID, row.Titulo, row.Autor, row.Genero, row.Descricao, row.GrauMinimo, row.Arquivo, row.Capa}
		if err := w.Write(record); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

type encodingCandidate struct {
	name   string
	decode func([]byte) (string, bool)
}

var encodingCandidates = []encodingCandidate{
	{name: "utf-8", decode: decodeUTF8},
	{name: "utf-8-sig", decode: decodeUTF8BOM},
	{name: "latin-1", decode: decodeLatin1},
}

// decodeUTF8 rejects BOM-prefixed input so the utf-8-sig candidate gets
// to claim it and the logged encoding stays truthful.
func decodeUTF8(b []byte) (string, bool) {
	if bytes.HasPrefix(b, utf8BOM) || !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func decodeUTF8BOM(b []byte) (string, bool) {
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(b)
	if err != nil || !utf8.Valid(out) {
		return "", false
	}
	return string(out), true
}

func decodeLatin1(b []byte) (string, bool) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	return string(out), true
}

type delimiterCandidate struct {
	name string
	rune rune // 0 means auto-detect from the header line
}

var delimiterCandidates = []delimiterCandidate{
	{name: "auto", rune: 0},
	{name: "comma", rune: ','},
	{name: "semicolon", rune: ';'},
	{name: "tab", rune: '\t'},
}

func detectDelimiter(text string) rune {
	header := text
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	best, bestCount := ',', strings.Count(header, ",")
	for _, c := range []rune{';', '\t'} {
		if n := strings.Count(header, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

func parseCSV(text string, comma rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no records")
	}
	return records, nil
}

// projectRecords maps parsed records onto the canonical schema: missing
// required columns become empty strings, extras are dropped.
func projectRecords(records [][]string) []entity.Work {
	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	field := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]entity.Work, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, entity.Work{
			ID:         field(record, "id"),
			Titulo:     field(record, "titulo"),
			Autor:      field(record, "autor"),
			Genero:     field(record, "genero"),
			Descricao:  field(record, "descricao"),
			GrauMinimo: field(record, "grau_minimo"),
			Arquivo:    field(record, "arquivo"),
			Capa:       field(record, "capa"),
		})
	}
	return rows
}
