// Package pdftext wraps the PDF byte-to-text decode capability behind
// the core.PDFDecoder interface.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/cardpipe/cardpipe/core"
)

// Decoder decodes PDF bytes using ledongthuc/pdf.
type Decoder struct{}

// New creates a Decoder.
func New() *Decoder {
	return &Decoder{}
}

// Decode extracts plain text and document metadata from raw PDF bytes.
func (d *Decoder) Decode(data []byte) (string, core.PDFInfo, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", core.PDFInfo{}, fmt.Errorf("opening pdf: %w", err)
	}

	info := core.PDFInfo{PageCount: r.NumPage()}
	if title := r.Trailer().Key("Info").Key("Title"); !title.IsNull() {
		info.Title = strings.TrimSpace(title.Text())
	}

	reader, err := r.GetPlainText()
	if err != nil {
		return "", info, fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", info, fmt.Errorf("reading pdf text: %w", err)
	}

	// Null bytes and control runs come out of some encoders.
	text := strings.ReplaceAll(buf.String(), "\x00", "")
	text = strings.Join(strings.Fields(text), " ")

	return text, info, nil
}
