package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Aashish23092/tax-form-engine/dto"
)

// ErrFileTooLarge is returned for uploads above the configured size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// DocumentLoader turns uploaded files into RawDocuments. Text, markdown
// and HTML files are read as-is; PDFs go through their text layer.
type DocumentLoader struct {
	pdfProcessor PDFProcessor
	maxFileSize  int64
}

func NewDocumentLoader(pdfProcessor PDFProcessor, maxFileSize int64) *DocumentLoader {
	return &DocumentLoader{
		pdfProcessor: pdfProcessor,
		maxFileSize:  maxFileSize,
	}
}

// SupportedExtensions lists the file extensions Load accepts.
func SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown", ".html", ".htm", ".pdf"}
}

// Load materializes one file's content.
func (l *DocumentLoader) Load(filename string, data []byte, password string) (dto.RawDocument, error) {
	if l.maxFileSize > 0 && int64(len(data)) > l.maxFileSize {
		return dto.RawDocument{}, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, filename, len(data), l.maxFileSize)
	}

	doc := dto.RawDocument{Filename: filepath.Base(filename)}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt", ".md", ".markdown", ".html", ".htm":
		if !utf8.Valid(data) {
			return dto.RawDocument{}, fmt.Errorf("%w: %s is not valid UTF-8 text", dto.ErrUnsupportedFile, filename)
		}
		doc.Text = string(data)
	case ".pdf":
		text, err := l.pdfProcessor.ExtractText(data, password)
		if err != nil {
			return dto.RawDocument{}, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		doc.Text = text
	default:
		return dto.RawDocument{}, fmt.Errorf("%w: %q (supported: %s)", dto.ErrUnsupportedFile, ext, strings.Join(SupportedExtensions(), ", "))
	}
	return doc, nil
}

// LoadFile reads a document from disk.
func (l *DocumentLoader) LoadFile(path, password string) (dto.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return dto.RawDocument{}, err
	}
	if l.maxFileSize > 0 && info.Size() > l.maxFileSize {
		return dto.RawDocument{}, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, path, info.Size(), l.maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.RawDocument{}, err
	}
	return l.Load(path, data, password)
}

// LoadMultipart reads an uploaded multipart file.
func (l *DocumentLoader) LoadMultipart(file *multipart.FileHeader, password string) (dto.RawDocument, error) {
	if l.maxFileSize > 0 && file.Size > l.maxFileSize {
		return dto.RawDocument{}, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, file.Filename, file.Size, l.maxFileSize)
	}
	f, err := file.Open()
	if err != nil {
		return dto.RawDocument{}, fmt.Errorf("failed to open file %s: %w", file.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return dto.RawDocument{}, fmt.Errorf("failed to read file %s: %w", file.Filename, err)
	}
	return l.Load(file.Filename, data, password)
}

// LoadUpload materializes every file of an upload and attaches the
// pre-extracted values from its metadata.
func (l *DocumentLoader) LoadUpload(req *dto.UploadRequest) ([]dto.RawDocument, error) {
	meta, err := ParseUploadMetadata([]byte(req.Metadata))
	if err != nil {
		return nil, err
	}

	docs := make([]dto.RawDocument, 0, len(req.Files))
	for _, fh := range req.Files {
		doc, err := l.LoadMultipart(fh, req.Password)
		if err != nil {
			return nil, err
		}
		if m, ok := meta[fh.Filename]; ok {
			doc.KeyValues = m.KeyValues
			doc.NumericTokens = m.NumericTokens
			if doc.Text == "" {
				doc.Text = m.Text
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
