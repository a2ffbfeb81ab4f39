package report

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// Export: write HTML/markdown, or convert HTML to PDF via wkhtmltopdf or chromium
// ════════════════════════════════════════════════════════════════════

// PDFEngine specifies which engine to use for HTML→PDF conversion.
type PDFEngine string

const (
	EngineWKHTML   PDFEngine = "wkhtmltopdf"
	EngineChromium PDFEngine = "chromium"
	EngineNone     PDFEngine = "none" // write HTML instead
)

var chromiumNames = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// PDFConfig holds configuration for PDF generation.
type PDFConfig struct {
	Engine      PDFEngine // default: auto-detect
	PageSize    string    // default: "A4"
	Orientation string    // "portrait" or "landscape" (default, statement tables are wide)
	Margin      string    // default: "10mm"
}

// DefaultPDFConfig returns sensible defaults for PDF generation.
func DefaultPDFConfig() PDFConfig {
	return PDFConfig{
		PageSize:    "A4",
		Orientation: "landscape",
		Margin:      "10mm",
	}
}

// DetectPDFEngine checks which PDF engine is available on the system.
func DetectPDFEngine() PDFEngine {
	if _, err := lookPath("wkhtmltopdf"); err == nil {
		return EngineWKHTML
	}
	if chromiumBinary() != "" {
		return EngineChromium
	}
	return EngineNone
}

// WriteReport writes content to path. For a .pdf path the content must be
// HTML; it is converted with the detected engine, or written next to path
// as .html when no engine is available. The path written is returned.
func WriteReport(ctx context.Context, content, path string, cfg PDFConfig) (string, error) {
	if path == "" {
		return "", fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("writing report: %w", err)
		}
		return path, nil
	}

	engine := cfg.Engine
	if engine == "" {
		engine = DetectPDFEngine()
	}
	switch engine {
	case EngineWKHTML, EngineChromium:
		return path, generatePDF(ctx, engine, content, path, cfg)
	case EngineNone:
		fallback := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
		if err := os.WriteFile(fallback, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("writing HTML fallback: %w", err)
		}
		return fallback, nil
	default:
		return "", fmt.Errorf("unsupported PDF engine: %s", engine)
	}
}

func generatePDF(ctx context.Context, engine PDFEngine, html, output string, cfg PDFConfig) error {
	tmp, err := os.CreateTemp("", "finanalysis-report-*.html")
	if err != nil {
		return fmt.Errorf("creating temp HTML: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp HTML: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing temp HTML: %w", err)
	}

	absOutput, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}

	var cmd *exec.Cmd
	if engine == EngineWKHTML {
		cmd = exec.CommandContext(ctx, "wkhtmltopdf",
			"--page-size", cfg.PageSize,
			"--orientation", cfg.Orientation,
			"--margin-top", cfg.Margin,
			"--margin-bottom", cfg.Margin,
			"--margin-left", cfg.Margin,
			"--margin-right", cfg.Margin,
			"--encoding", "UTF-8",
			"--enable-local-file-access",
			"--quiet",
			tmp.Name(), absOutput)
	} else {
		bin := chromiumBinary()
		if bin == "" {
			return fmt.Errorf("chromium not found in PATH")
		}
		args := []string{"--headless", "--disable-gpu", "--no-sandbox",
			"--print-to-pdf=" + absOutput, "--print-to-pdf-no-header"}
		if strings.EqualFold(cfg.Orientation, "landscape") {
			args = append(args, "--landscape")
		}
		cmd = exec.CommandContext(ctx, bin, append(args, "file://"+tmp.Name())...)
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w\nOutput: %s", engine, err, out)
	}
	return nil
}

func chromiumBinary() string {
	for _, name := range chromiumNames {
		if path, err := lookPath(name); err == nil {
			return path
		}
	}
	return ""
}
