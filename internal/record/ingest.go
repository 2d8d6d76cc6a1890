package record

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupportedInput reports an input file whose extension selects no
// known format.
var ErrUnsupportedInput = errors.New("unsupported input file")

// ErrDecode reports a malformed row or object in an otherwise readable
// input file.
var ErrDecode = errors.New("decoding record")

// FromFile reads every access record from path and returns them sorted by
// timestamp ascending, stable by file order on ties. The format is chosen
// by file extension: .csv or .json. An empty file yields an empty slice.
func FromFile(path string) ([]AccessRecord, error) {
	var load func(io.Reader) ([]AccessRecord, error)
	switch ext := filepath.Ext(path); ext {
	case ".csv":
		load = fromCSV
	case ".json":
		load = fromJSON
	case "":
		return nil, fmt.Errorf("%w: %s: can't determine file type", ErrUnsupportedInput, path)
	default:
		return nil, fmt.Errorf("%w: unknown extension %q", ErrUnsupportedInput, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	records, err := load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// fromCSV parses a CSV export. The header row must name @timestamp, path,
// params and target_processing_time; domain_name is optional and unknown
// columns are ignored.
func fromCSV(r io.Reader) ([]AccessRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		// Empty input; emptiness is rejected later, at plan build.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrDecode, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"@timestamp", "path", "params", "target_processing_time"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: header lacks column %q", ErrDecode, required)
		}
	}

	var records []AccessRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrDecode, row, err)
		}

		raw := rawRecord{
			Timestamp:  columnValue(fields, columns, "@timestamp"),
			DomainName: columnValue(fields, columns, "domain_name"),
			Path:       columnValue(fields, columns, "path"),
			Parameters: columnValue(fields, columns, "params"),
		}
		raw.RequiredTime, err = strconv.ParseFloat(columnValue(fields, columns, "target_processing_time"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: target_processing_time: %v", ErrDecode, row, err)
		}

		rec, err := raw.toAccessRecord()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrDecode, row, err)
		}
		records = append(records, rec)
	}
}

func columnValue(fields []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// fromJSON parses a stream of {"_source": {...}} objects, newline-delimited
// or whitespace-separated, with no outer array.
func fromJSON(r io.Reader) ([]AccessRecord, error) {
	type sourceRecord struct {
		Source rawRecord `json:"_source"`
	}

	dec := json.NewDecoder(r)
	var records []AccessRecord
	for object := 1; ; object++ {
		var src sourceRecord
		err := dec.Decode(&src)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %v", ErrDecode, object, err)
		}

		rec, err := src.Source.toAccessRecord()
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %v", ErrDecode, object, err)
		}
		records = append(records, rec)
	}
}
