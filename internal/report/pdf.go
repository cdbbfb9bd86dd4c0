package report

import (
	"fmt"
	"os"

	"github.com/signintech/gopdf"

	"github.com/neurobridge/neurobridge/internal/model"
)

// Common DejaVuSans locations across Debian, Fedora and Alpine
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
}

// WritePDF renders the report as a PDF file. Unlike the other renderers
// this can fail: gopdf needs a TTF font available on the host.
func WritePDF(r model.Report, path string) error {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	loaded := false
	for _, p := range fontPaths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := pdf.AddTTFFont("DejaVu", p); err == nil {
			loaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !loaded {
		if fontErr == nil {
			fontErr = fmt.Errorf("no DejaVuSans.ttf found in known font directories")
		}
		return fmt.Errorf("load PDF font: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 18); err != nil {
		return err
	}
	pdf.Cell(nil, "NeuroBridge Screening Report")
	pdf.Br(24)

	if err := pdf.SetFont("DejaVu", "", 10); err != nil {
		return err
	}
	pdf.Cell(nil, fmt.Sprintf("Report ID: %s", r.ID))
	pdf.Br(14)
	pdf.Cell(nil, fmt.Sprintf("Created: %s", r.CreatedAt.Format("2006-01-02 15:04 MST")))
	pdf.Br(22)

	for _, section := range r.Sections {
		if err := writeSection(&pdf, section); err != nil {
			return err
		}
	}

	return pdf.WritePdf(path)
}

func writeSection(pdf *gopdf.GoPdf, section model.Section) error {
	if pdf.GetY() > 760 {
		pdf.AddPage()
	}

	if err := pdf.SetFont("DejaVu", "", 13); err != nil {
		return err
	}
	pdf.Cell(nil, section.Title)
	pdf.Br(16)

	if err := pdf.SetFont("DejaVu", "", 10); err != nil {
		return err
	}
	for _, paragraph := range splitLines(section.Text) {
		lines, err := pdf.SplitText(paragraph, 500)
		if err != nil {
			lines = []string{paragraph}
		}
		for _, line := range lines {
			if pdf.GetY() > 800 {
				pdf.AddPage()
			}
			pdf.Cell(nil, line)
			pdf.Br(13)
		}
	}
	pdf.Br(10)
	return nil
}

func splitLines(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			if i > start {
				out = append(out, text[start:i])
			}
			start = i + 1
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}
