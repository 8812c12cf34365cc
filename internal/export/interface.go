package export

import (
	"io"
	"strings"

	"github.com/szqshan/datamaster/internal"
)

// Format identifies an export target format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// extensions is the authoritative format→extension mapping. File extensions
// are always looked up here, never derived from the format name.
var extensions = map[Format]string{
	FormatXLSX: ".xlsx",
	FormatCSV:  ".csv",
	FormatJSON: ".json",
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return extensions[f]
}

// ParseFormat resolves a caller-supplied format name. Common spreadsheet
// aliases map onto xlsx.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", &internal.FormatError{Format: name}
	}
}

// Table is a flattened, column-oriented view of a result set ready for
// serialization.
type Table struct {
	Columns []string
	Rows    [][]interface{}
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(t *Table, w io.Writer) error
}

// NewExporter creates a new exporter based on format
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatXLSX:
		return &XLSXExporter{}, nil
	case FormatCSV:
		return &CSVExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		return nil, &internal.FormatError{Format: string(format)}
	}
}
