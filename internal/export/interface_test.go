package export

import (
	"errors"
	"testing"

	"github.com/szqshan/datamaster/internal"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"xlsx", "xlsx", FormatXLSX, false},
		{"excel alias", "excel", FormatXLSX, false},
		{"spreadsheet alias", "spreadsheet", FormatXLSX, false},
		{"csv", "csv", FormatCSV, false},
		{"json", "json", FormatJSON, false},
		{"mixed case", "CSV", FormatCSV, false},
		{"padded", "  json  ", FormatJSON, false},
		{"unknown", "parquet", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) accepted, want error", tt.input)
				}
				var ferr *internal.FormatError
				if !errors.As(err, &ferr) {
					t.Errorf("ParseFormat(%q) error = %T, want *FormatError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatExtensions(t *testing.T) {
	// The mapping is authoritative; extensions come from the table, never
	// from the format name.
	tests := []struct {
		format Format
		want   string
	}{
		{FormatXLSX, ".xlsx"},
		{FormatCSV, ".csv"},
		{FormatJSON, ".json"},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("%s.Extension() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestNewExporter(t *testing.T) {
	for _, format := range []Format{FormatXLSX, FormatCSV, FormatJSON} {
		exporter, err := NewExporter(format)
		if err != nil {
			t.Errorf("NewExporter(%s) error: %v", format, err)
		}
		if exporter == nil {
			t.Errorf("NewExporter(%s) returned nil", format)
		}
	}

	if _, err := NewExporter(Format("bogus")); err == nil {
		t.Error("NewExporter of unknown format should fail")
	}
}
