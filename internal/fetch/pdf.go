package fetch

import (
	"bytes"
	"strings"

	pdfx "github.com/ledongthuc/pdf"
)

// maxPDFPages bounds extraction so one huge paper cannot stall a pass.
const maxPDFPages = 50

// pdfToText extracts plain text from a PDF body, page by page.
func pdfToText(body []byte) (string, error) {
	r, err := pdfx.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", err
	}
	total := r.NumPage()
	if total > maxPDFPages {
		total = maxPDFPages
	}
	var out strings.Builder
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if t := strings.TrimSpace(txt); t != "" {
			out.WriteString(t)
			out.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(out.String()), nil
}
