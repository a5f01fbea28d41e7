// Package docx reads paragraph text from Office Open XML word-processing documents.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

// wordNamespace is the WordprocessingML main namespace.
const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// ErrMissingDocumentPart is returned when the archive has no word/document.xml.
var ErrMissingDocumentPart = errors.New("no word/document.xml found in docx")

// Reader extracts paragraphs from .docx payloads.
type Reader struct {
	// MaxPartSize caps the decompressed size of the document part.
	MaxPartSize int64
}

// NewReader returns a reader with a 64 MiB part limit.
func NewReader() *Reader {
	return &Reader{MaxPartSize: 64 << 20}
}

// Paragraphs returns the text of every body paragraph in document order, including
// empty ones. Tabs become "\t" and line breaks "\n".
func (r *Reader) Paragraphs(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", documentPart, err)
		}
		defer rc.Close()

		var src io.Reader = rc
		if r.MaxPartSize > 0 {
			src = io.LimitReader(rc, r.MaxPartSize)
		}
		return parseParagraphs(src)
	}
	return nil, ErrMissingDocumentPart
}

func parseParagraphs(src io.Reader) ([]string, error) {
	dec := xml.NewDecoder(src)

	var (
		paragraphs []string
		current    strings.Builder
		depth      int // nesting of w:p elements
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
