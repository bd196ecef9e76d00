// Package csvexport serializa tablas de reporte como CSV compatible con Excel.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/tienda-pos-api/internal/application/reporting"
)

// Codificaciones soportadas.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// utf8BOM hace que Excel detecte UTF-8 (tildes y "N°").
const utf8BOM = "\uFEFF"

// Writer implementa reporting.TableWriter.
type Writer struct {
	// Comma separador de campos; 0 usa ','.
	Comma rune
	// Encoding utf-8 (con BOM) o windows-1252 (Excel en español sin BOM).
	Encoding string
}

var _ reporting.TableWriter = (*Writer)(nil)

// New writer con coma en la codificación dada (vacío = utf-8).
func New(encoding string) (*Writer, error) {
	enc := strings.ToLower(strings.TrimSpace(encoding))
	switch enc {
	case "", "utf8", EncodingUTF8:
		enc = EncodingUTF8
	case "cp1252", EncodingWindows1252:
		enc = EncodingWindows1252
	default:
		return nil, fmt.Errorf("csv: codificación no soportada %q", encoding)
	}
	return &Writer{Comma: ',', Encoding: enc}, nil
}

// WriteTable escribe encabezado y filas. Todas las filas deben tener el ancho del encabezado.
func (w *Writer) WriteTable(out io.Writer, table reporting.Table) error {
	switch w.Encoding {
	case EncodingWindows1252:
		tw := transform.NewWriter(out, charmap.Windows1252.NewEncoder())
		if err := w.write(tw, table); err != nil {
			return err
		}
		return tw.Close()
	case "", EncodingUTF8:
		if _, err := io.WriteString(out, utf8BOM); err != nil {
			return err
		}
		return w.write(out, table)
	default:
		return fmt.Errorf("csv: codificación no soportada %q", w.Encoding)
	}
}

func (w *Writer) write(out io.Writer, table reporting.Table) error {
	cw := csv.NewWriter(out)
	if w.Comma != 0 {
		cw.Comma = w.Comma
	}
	if err := cw.Write(table.Header); err != nil {
		return err
	}
	for i, r := range table.Rows {
		if len(r) != len(table.Header) {
			return fmt.Errorf("csv: fila %d tiene %d columnas, se esperaban %d", i+1, len(r), len(table.Header))
		}
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
