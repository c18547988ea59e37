package storage

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ProbePDF opens a PDF on disk and returns its page count. An error means
// the file is not a readable PDF and should be rejected at upload time.
func ProbePDF(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	pages := r.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return pages, nil
}
