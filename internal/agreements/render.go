package agreements

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TemplateName is the page template inside the template folder. Every other
// file in the folder is treated as a static asset.
const TemplateName = "framework-agreement-signature-page.html"

type pageData struct {
	Framework FrameworkDetails
	Supplier  SignaturePage
}

// RenderHTML writes one HTML page per supplier into outDir together with the
// template folder's static assets, and returns the page paths in order.
func RenderHTML(pages []SignaturePage, details FrameworkDetails, templateDir, outDir string) ([]string, error) {
	tmpl, err := template.ParseFiles(filepath.Join(templateDir, TemplateName))
	if err != nil {
		return nil, fmt.Errorf("failed to parse signature page template: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	if err := copyAssets(templateDir, outDir); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(pages))
	for _, p := range pages {
		path := filepath.Join(outDir, p.FileStem()+".html")
		if err := renderPage(tmpl, path, pageData{Framework: details, Supplier: p}); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func renderPage(tmpl *template.Template, path string, data pageData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := tmpl.Execute(f, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

func copyAssets(templateDir, outDir string) error {
	entries, err := os.ReadDir(templateDir)
	if err != nil {
		return fmt.Errorf("failed to read template folder: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || strings.EqualFold(filepath.Ext(e.Name()), ".html") {
			continue
		}
		if err := copyFile(filepath.Join(templateDir, e.Name()), filepath.Join(outDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
