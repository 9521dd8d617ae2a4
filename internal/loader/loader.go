// Package loader reads single configuration documents from disk. A document
// is YAML or JSON, chosen by file extension, and always decodes to a mapping.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jbweber/kiln/internal/document"
)

// Format is an on-disk document encoding.
type Format string

const (
	// FormatYAML is the default document encoding.
	FormatYAML Format = "yaml"
	// FormatJSON is accepted with identical semantics.
	FormatJSON Format = "json"
)

// candidateExtensions are tried, in order, for references without a known
// extension.
var candidateExtensions = []string{".yml", ".json"}

// ErrDocumentNotFound is wrapped by every NotFoundError.
var ErrDocumentNotFound = errors.New("document not found")

// NotFoundError reports a reference that matched no file.
type NotFoundError struct {
	Ref        string
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot resolve %s: tried %s", e.Ref, strings.Join(e.Candidates, " and "))
}

func (e *NotFoundError) Unwrap() error {
	return ErrDocumentNotFound
}

// FormatFromPath infers the document format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	default:
		return "", false
	}
}

// ResolvePath maps a reference to an absolute file path. A reference with a
// known extension is used as-is when the file exists; otherwise ".yml" and then
// ".json" are appended.
func ResolvePath(ref string) (string, error) {
	if _, ok := FormatFromPath(ref); ok && isFile(ref) {
		return filepath.Abs(ref)
	}
	candidates := make([]string, 0, len(candidateExtensions))
	for _, ext := range candidateExtensions {
		candidate := ref + ext
		if isFile(candidate) {
			return filepath.Abs(candidate)
		}
		candidates = append(candidates, candidate)
	}
	return "", &NotFoundError{Ref: ref, Candidates: candidates}
}

// LoadFromFile loads the document at path.
func LoadFromFile(path string) (*document.Map, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported document extension: %s (supported: .yml, .yaml, .json)", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes raw document bytes of the given format.
func Parse(data []byte, format Format) (*document.Map, error) {
	switch format {
	case FormatYAML:
		return document.ParseYAML(data)
	case FormatJSON:
		return document.ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// SaveToFile writes a document to path, encoded according to its extension.
func SaveToFile(doc *document.Map, path string) error {
	format, ok := FormatFromPath(path)
	if !ok {
		return fmt.Errorf("unsupported document extension: %s (supported: .yml, .yaml, .json)", path)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = doc.MarshalJSON()
		data = append(data, '\n')
	default:
		data, err = document.MarshalYAML(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
