package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/internal/extraction/ocr"
)

type stubReader struct {
	paragraphs []string
	err        error
}

func (s stubReader) Paragraphs(data []byte) ([]string, error) {
	return s.paragraphs, s.err
}

func stubRecognizer(lines ...string) ocr.Recognizer {
	return ocr.RecognizerFunc(func(ctx context.Context, data []byte) ([]string, error) {
		return lines, nil
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		tag  string
		want Format
	}{
		{"pdf", FormatPDF},
		{"PDF", FormatPDF},
		{".docx", FormatDOCX},
		{" .TXT ", FormatTXT},
		{"jpeg", FormatJPEG},
		{"jpg", FormatJPG},
		{"png", FormatPNG},
		{"gif", FormatUnknown},
		{"", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFormat(tt.tag))
		})
	}

	assert.Equal(t, FormatDOCX, FormatFromKey("cvs/jane.doe.DOCX"))
	assert.Equal(t, FormatUnknown, FormatFromKey("README"))
	assert.True(t, FormatPNG.IsSupported())
	assert.False(t, FormatUnknown.IsSupported())
	assert.Len(t, SupportedFormats(), 6)
}

func TestExtractText(t *testing.T) {
	e := NewExtractor(
		stubRecognizer("Jane Doe", "Skills", "Python"),
		stubReader{paragraphs: []string{"Education", "  ", "", "BS CS"}},
		nil,
	)
	ctx := context.Background()

	tests := []struct {
		name string
		data []byte
		tag  string
		want string
	}{
		{"pdf via ocr", []byte("%PDF-1.4"), "pdf", "Jane Doe Skills Python"},
		{"image via ocr", []byte("png"), "PNG", "Jane Doe Skills Python"},
		{"jpg via ocr", []byte("jpg"), ".jpg", "Jane Doe Skills Python"},
		{"docx skips blank paragraphs", []byte("zip"), "docx", "Education BS CS"},
		{"txt decoded as is", []byte("Experience\nAcme\n"), "txt", "Experience\nAcme\n"},
		{"unknown format", []byte("GIF89a"), "gif", ""},
		{"empty tag", []byte("data"), "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractText(ctx, tt.data, tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractText_Errors(t *testing.T) {
	boom := errors.New("boom")
	failing := ocr.RecognizerFunc(func(ctx context.Context, data []byte) ([]string, error) {
		return nil, boom
	})
	e := NewExtractor(failing, stubReader{err: boom}, nil)
	ctx := context.Background()

	_, err := e.ExtractKey(ctx, "scan.png", []byte("x"))
	require.Error(t, err)
	var extractionErr *internalErrors.ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, "scan.png", extractionErr.Key)
	assert.Equal(t, "png", extractionErr.Format)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(err, internalErrors.ErrExtraction))

	_, err = e.ExtractText(ctx, []byte("x"), "docx")
	assert.True(t, errors.Is(err, boom))

	_, err = e.ExtractText(ctx, []byte{0xff, 0xfe, 0xfd}, "txt")
	assert.True(t, errors.Is(err, ErrInvalidUTF8))
}

func TestExtractText_NoRecognizer(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	_, err := e.ExtractText(context.Background(), []byte("%PDF-1.4"), "pdf")
	assert.True(t, errors.Is(err, ErrNoRecognizer))

	text, err := e.ExtractText(context.Background(), []byte("plain"), "txt")
	require.NoError(t, err)
	assert.Equal(t, "plain", text)
}

func TestExtractText_DefaultDocxReader(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Skills</w:t></w:r></w:p><w:p/><w:p><w:r><w:t>Go, SQL</w:t></w:r></w:p>` +
		`</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	text, err := NewExtractor(nil, nil, nil).ExtractKey(context.Background(), "cv.docx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Skills Go, SQL", text)
}
