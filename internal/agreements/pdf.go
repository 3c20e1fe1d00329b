package agreements

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// PDFRenderer converts a local HTML file to PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, htmlPath string) ([]byte, error)
}

// ChromePDF prints pages with a headless Chrome. Requires Chrome/Chromium
// to be installed on the system.
type ChromePDF struct {
	Timeout time.Duration
}

// RenderPDF loads the file in a fresh browser and prints it with backgrounds.
func (c ChromePDF) RenderPDF(ctx context.Context, htmlPath string) ([]byte, error) {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, err
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print %s: %w", htmlPath, err)
	}
	return pdf, nil
}

// RenderPDFs prints every page into outDir. A failing page is logged and
// skipped; the returned slice lists the pages that failed.
func RenderPDFs(ctx context.Context, renderer PDFRenderer, htmlPaths []string, outDir string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	var failed []string
	for _, htmlPath := range htmlPaths {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		name := strings.TrimSuffix(filepath.Base(htmlPath), filepath.Ext(htmlPath)) + ".pdf"
		pdf, err := renderer.RenderPDF(ctx, htmlPath)
		if err == nil {
			err = os.WriteFile(filepath.Join(outDir, name), pdf, 0644)
		}
		if err != nil {
			logger.Error("Failed to render PDF", zap.String("page", htmlPath), zap.Error(err))
			failed = append(failed, htmlPath)
			continue
		}
		logger.Debug("Rendered PDF", zap.String("file", name))
	}
	return failed, nil
}
