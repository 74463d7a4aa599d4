package botapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"slices"
)

type formField struct {
	name  string
	value string
}

type formFile struct {
	field  string
	name   string
	reader io.Reader
}

// form accumulates multipart fields by value. Nothing is written until encode,
// so a form never crosses a blocking step half-built.
type form struct {
	fields []formField
	files  []formFile
}

func (f form) withField(name, value string) form {
	f.fields = append(slices.Clip(f.fields), formField{name: name, value: value})
	return f
}

func (f form) withFile(field, name string, r io.Reader) form {
	if name == "" {
		name = field
	}
	f.files = append(slices.Clip(f.files), formFile{field: field, name: name, reader: r})
	return f
}

// encode materializes the form into a multipart body and returns it with its
// Content-Type header value.
func (f form) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field.name, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.reader); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", file.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
