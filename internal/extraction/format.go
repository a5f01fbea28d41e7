package extraction

import (
	"path"
	"strings"
)

// Format is a declared document format tag.
type Format string

const (
	FormatUnknown Format = ""
	FormatPDF     Format = "pdf"
	FormatJPG     Format = "jpg"
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatDOCX    Format = "docx"
	FormatTXT     Format = "txt"
)

var knownFormats = map[Format]struct{}{
	FormatPDF:  {},
	FormatJPG:  {},
	FormatJPEG: {},
	FormatPNG:  {},
	FormatDOCX: {},
	FormatTXT:  {},
}

// ParseFormat maps a tag such as "PDF" or ".docx" to a Format. Unrecognised tags
// map to FormatUnknown.
func ParseFormat(tag string) Format {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), ".")))
	if _, ok := knownFormats[f]; ok {
		return f
	}
	return FormatUnknown
}

// FormatFromKey derives the format from the extension of a storage key or file name.
func FormatFromKey(key string) Format {
	return ParseFormat(path.Ext(key))
}

// IsSupported reports whether f has an extraction strategy.
func (f Format) IsSupported() bool {
	_, ok := knownFormats[f]
	return ok
}

// SupportedFormats lists every format with an extraction strategy.
func SupportedFormats() []Format {
	return []Format{FormatPDF, FormatJPG, FormatJPEG, FormatPNG, FormatDOCX, FormatTXT}
}
