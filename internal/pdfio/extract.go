package pdfio

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText pulls plain text from every page of a PDF. Pages are joined
// with [PAGE_BREAK_n] markers so chunk metadata can later reference the
// originating page.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	var sb strings.Builder

	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			// unreadable page, keep the rest of the document
			continue
		}
		sb.WriteString(content)

		if i < total {
			sb.WriteString(fmt.Sprintf("\n[PAGE_BREAK_%d]\n", i))
		}
	}

	return sb.String(), nil
}
