// Package export compiles saved questionnaire answers into a styled HTML
// document and renders it to PDF with headless Chrome.
package export

import (
	"context"
	"errors"

	"github.com/MahiShah30/hospital-sop-generator/internal/answers"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Section is one unit of compiler input: a section id plus its saved answers.
type Section struct {
	ID      string
	Answers answers.Tree
}

// Result contains the rendered output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates PDF rendering runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)

// Renderer turns an HTML document into a downloadable artifact.
type Renderer interface {
	Render(ctx context.Context, html, title string) (*Result, error)
}

// HTMLResult wraps an already-built HTML document as a downloadable result,
// for callers that skip PDF rendering.
func HTMLResult(html, title string) *Result {
	return &Result{
		Data:     []byte(html),
		Filename: sanitizeFilename(title) + ".html",
		MimeType: "text/html; charset=utf-8",
	}
}
