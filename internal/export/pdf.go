package export

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeRenderer renders HTML to PDF with headless Chrome.
type ChromeRenderer struct {
	Timeout time.Duration
}

func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{Timeout: 30 * time.Second}
}

// percentEncodeForDataURL encodes a string for use in a data URL.
// Unlike url.QueryEscape, this encodes spaces as %20, not +.
func percentEncodeForDataURL(s string) string {
	var result strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == '~':
			// Unreserved characters per RFC 3986
			result.WriteRune(r)
		case r == ' ':
			result.WriteString("%20")
		default:
			for _, b := range []byte(string(r)) {
				result.WriteString(fmt.Sprintf("%%%02X", b))
			}
		}
	}
	return result.String()
}

func (r *ChromeRenderer) Render(ctx context.Context, html, title string) (*Result, error) {
	if _, err := exec.LookPath("chromium-browser"); err != nil {
		if _, fallbackErr := exec.LookPath("chromium"); fallbackErr != nil {
			return nil, fmt.Errorf("%w: chromium not installed", ErrPDFDependencyMissing)
		}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Chrome options for headless mode in a container
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	dataURL := "data:text/html;charset=utf-8," + percentEncodeForDataURL(html)

	var pdfData []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27). // A4
				WithPaperHeight(11.69).
				WithMarginTop(0.75).
				WithMarginBottom(0.75).
				WithMarginLeft(0.75).
				WithMarginRight(0.75).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome pdf generation failed: %w", err)
	}

	return &Result{
		Data:     pdfData,
		Filename: sanitizeFilename(title) + ".pdf",
		MimeType: "application/pdf",
	}, nil
}

// sanitizeFilename creates a safe filename from a title.
func sanitizeFilename(title string) string {
	result := ""
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result += string(r)
		case r == ' ':
			result += "-"
		case r == '-', r == '_':
			result += string(r)
		}
	}

	if len(result) > 50 {
		result = result[:50]
	}
	if result == "" {
		result = "document"
	}
	return result
}
