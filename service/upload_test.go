package service

import (
	"bytes"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/tax-form-engine/dto"
)

type stubPDF struct {
	text     string
	err      error
	password string
}

func (s *stubPDF) ExtractText(_ []byte, password string) (string, error) {
	s.password = password
	return s.text, s.err
}

func TestLoadTextFormats(t *testing.T) {
	loader := NewDocumentLoader(&stubPDF{}, 1024)

	for _, name := range []string{"w2.txt", "w2.MD", "dir/w2.html", "w2.htm", "w2.markdown"} {
		doc, err := loader.Load(name, []byte(w2Text), "")
		require.NoError(t, err, name)
		assert.Equal(t, w2Text, doc.Text)
		assert.Equal(t, filepath.Base(name), doc.Filename)
	}
}

func TestLoadPDFUsesProcessor(t *testing.T) {
	pdf := &stubPDF{text: "Form 1099-INT\nInterest income 12.00"}
	loader := NewDocumentLoader(pdf, 1024)

	doc, err := loader.Load("int.pdf", []byte("%PDF-1.7"), "secret")
	require.NoError(t, err)
	assert.Equal(t, pdf.text, doc.Text)
	assert.Equal(t, "secret", pdf.password)

	pdf.err = ErrTooManyPages
	_, err = loader.Load("int.pdf", []byte("%PDF-1.7"), "")
	assert.ErrorIs(t, err, ErrTooManyPages)
}

func TestLoadRejects(t *testing.T) {
	loader := NewDocumentLoader(&stubPDF{}, 8)

	_, err := loader.Load("scan.png", []byte("png"), "")
	assert.ErrorIs(t, err, dto.ErrUnsupportedFile)

	_, err = loader.Load("w2.txt", []byte{0xff, 0xfe, 0x00}, "")
	assert.ErrorIs(t, err, dto.ErrUnsupportedFile)

	_, err = loader.Load("w2.txt", []byte("0123456789"), "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nec.txt")
	require.NoError(t, os.WriteFile(path, []byte(necText), 0o600))

	doc, err := NewDocumentLoader(&stubPDF{}, 0).LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "nec.txt", doc.Filename)
	assert.Equal(t, necText, doc.Text)

	_, err = NewDocumentLoader(&stubPDF{}, 4).LoadFile(path, "")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = NewDocumentLoader(&stubPDF{}, 0).LoadFile(filepath.Join(dir, "missing.txt"), "")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func multipartFiles(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := w.CreateFormFile("files[]", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files[]"]
}

func TestLoadUploadAttachesMetadata(t *testing.T) {
	loader := NewDocumentLoader(&stubPDF{}, 1<<20)
	req := &dto.UploadRequest{
		Files: multipartFiles(t, map[string]string{"w2.txt": w2Text}),
		Metadata: `{"documents":[{"filename":"w2.txt","key_values":{"box 2":"7,200.00"},` +
			`"numeric_tokens":["60,250.00","7,200.00"]}]}`,
	}

	docs, err := loader.LoadUpload(req)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "w2.txt", docs[0].Filename)
	assert.Equal(t, w2Text, docs[0].Text)
	assert.Equal(t, "7,200.00", docs[0].KeyValues["box 2"])
	assert.Len(t, docs[0].NumericTokens, 2)
}

func TestLoadUploadRejectsBadMetadata(t *testing.T) {
	loader := NewDocumentLoader(&stubPDF{}, 1<<20)
	req := &dto.UploadRequest{
		Files:    multipartFiles(t, map[string]string{"w2.txt": w2Text}),
		Metadata: `{"documents":[{"key_values":{"wages":"1"}}]}`,
	}

	_, err := loader.LoadUpload(req)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
}
