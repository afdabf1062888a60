package persistence

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"travel-records-service/internal/domain/entity"
)

// Format selects the on-disk layout of the record file
type Format string

const (
	// FormatJSON stores every record in a single JSON array
	FormatJSON Format = "json"
	// FormatJSONLines stores one JSON object per line
	FormatJSONLines Format = "jsonl"
)

// ParseFormat validates a configured file format
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatJSONLines:
		return FormatJSONLines, nil
	}
	return "", fmt.Errorf("unsupported data format %q", value)
}

// legacyKeys lists the per-kind arrays of the older grouped file layout, in
// the order they are flattened.
var legacyKeys = []struct {
	key  string
	kind entity.Kind
}{
	{"clients", entity.KindClient},
	{"airlines", entity.KindAirline},
	{"flights", entity.KindFlight},
}

type decoded struct {
	records []entity.Record
	skipped []error
}

type codec interface {
	encode(records []entity.Record) ([]byte, error)
	// decode returns an error only when the content cannot be read at all
	decode(data []byte) (decoded, error)
}

func codecFor(format Format) (codec, error) {
	switch format {
	case FormatJSON, "":
		return jsonArrayCodec{}, nil
	case FormatJSONLines:
		return jsonLinesCodec{}, nil
	}
	return nil, fmt.Errorf("unsupported data format %q", format)
}

type jsonArrayCodec struct{}

func (jsonArrayCodec) encode(records []entity.Record) ([]byte, error) {
	if records == nil {
		records = []entity.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (jsonArrayCodec) decode(data []byte) (decoded, error) {
	var out decoded
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if legacy, ok, err := decodeLegacy(data); ok || err != nil {
		return legacy, err
	}

	var entries []map[string]any
	if err := unmarshalNumbers(data, &entries); err != nil {
		return out, err
	}
	for i, entry := range entries {
		rec, err := recordFromMap(entry)
		if err != nil {
			out.skipped = append(out.skipped, fmt.Errorf("entry %d: %w", i+1, err))
			continue
		}
		out.records = append(out.records, rec)
	}
	return out, nil
}

type jsonLinesCodec struct{}

func (jsonLinesCodec) encode(records []entity.Record) ([]byte, error) {
	var buf bytes.Buffer
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (jsonLinesCodec) decode(data []byte) (decoded, error) {
	var out decoded
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if legacy, ok, err := decodeLegacy(data); ok || err != nil {
		return legacy, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := unmarshalNumbers(line, &entry); err != nil {
			out.skipped = append(out.skipped, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		rec, err := recordFromMap(entry)
		if err != nil {
			out.skipped = append(out.skipped, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		out.records = append(out.records, rec)
	}
	if err := scanner.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// decodeLegacy flattens {"clients":[...],"airlines":[...],"flights":[...]}.
// ok is false when data is not in that shape.
func decodeLegacy(data []byte) (decoded, bool, error) {
	var out decoded
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return out, false, nil
	}

	var groups map[string]json.RawMessage
	if err := unmarshalNumbers(trimmed, &groups); err != nil {
		return out, false, nil
	}
	found := false
	for _, lk := range legacyKeys {
		if _, ok := groups[lk.key]; ok {
			found = true
		}
	}
	if !found {
		return out, false, nil
	}

	for _, lk := range legacyKeys {
		raw, ok := groups[lk.key]
		if !ok {
			continue
		}
		var entries []map[string]any
		if err := unmarshalNumbers(raw, &entries); err != nil {
			out.skipped = append(out.skipped, fmt.Errorf("%s: %w", lk.key, err))
			continue
		}
		for i, entry := range entries {
			rec, err := entity.FromMapAs(lk.kind, entry)
			if err == nil {
				err = entity.Validate(rec)
			}
			if err != nil {
				out.skipped = append(out.skipped, fmt.Errorf("%s entry %d: %w", lk.key, i+1, err))
				continue
			}
			out.records = append(out.records, rec)
		}
	}
	return out, true, nil
}

func recordFromMap(entry map[string]any) (entity.Record, error) {
	rec, err := entity.FromMap(entry)
	if err != nil {
		return nil, err
	}
	if err := entity.Validate(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// unmarshalNumbers decodes a single JSON value keeping numbers as json.Number
// so integer fields survive without float rounding.
func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}
