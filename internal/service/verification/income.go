// Package verification extracts a monthly income figure from an uploaded
// salary slip. PDF slips with embedded text are read page by page; anything
// else is scanned as plain text. Image OCR is out of scope, so a slip we
// cannot read yields a definite error and the user re-uploads.
package verification

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoIncomeFound is returned when the document is readable but carries no
// figure that looks like a salary.
var ErrNoIncomeFound = errors.New("verification: no income figure found in document")

// ErrUnreadableDocument is returned when the document bytes cannot be parsed.
var ErrUnreadableDocument = errors.New("verification: could not read document")

const (
	minMonthly = 20000
	maxMonthly = 200000

	// Figures in this band read like annual CTC and are mapped to monthly.
	minAnnual = 300000
	maxAnnual = 2000000

	// Salary slips rarely run past two pages; stop there.
	maxPages = 2
)

var figurePattern = regexp.MustCompile(`\d{4,7}`)

// Extractor pulls income figures out of uploaded documents.
type Extractor struct{}

// NewExtractor returns a document income extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractIncome returns the monthly income found in the document, in whole
// rupees. The call is synchronous; callers apply any timeout or size limit
// before handing over the bytes.
func (e *Extractor) ExtractIncome(_ context.Context, data []byte, filename string) (int64, error) {
	if len(data) == 0 {
		return 0, ErrUnreadableDocument
	}

	text, err := documentText(data, filename)
	if err != nil {
		return 0, err
	}

	income, ok := monthlyIncomeFromText(text)
	if !ok {
		return 0, ErrNoIncomeFound
	}
	return income, nil
}

func documentText(data []byte, filename string) (text string, err error) {
	// The pdf library panics on some corrupt cross-reference tables; a
	// corrupt upload is just an unreadable document.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", ErrUnreadableDocument
		}
	}()

	isPDF := bytes.HasPrefix(data, []byte("%PDF")) ||
		strings.HasSuffix(strings.ToLower(filename), ".pdf")
	if !isPDF {
		return string(data), nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ErrUnreadableDocument
	}

	var sb strings.Builder
	pages := reader.NumPage()
	if pages > maxPages {
		pages = maxPages
	}
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return "", ErrUnreadableDocument
	}
	return sb.String(), nil
}

// monthlyIncomeFromText scans for salary-like figures. Numbers in the annual
// band are divided by twelve; the largest plausible monthly figure wins.
func monthlyIncomeFromText(text string) (int64, bool) {
	cleaned := strings.ReplaceAll(text, ",", "")
	var best int64

	for _, match := range figurePattern.FindAllString(cleaned, -1) {
		n, err := strconv.ParseInt(match, 10, 64)
		if err != nil {
			continue
		}

		var monthly int64
		switch {
		case n >= minAnnual && n <= maxAnnual:
			monthly = n / 12
		case n >= minMonthly && n <= maxMonthly:
			monthly = n
		default:
			continue
		}

		if monthly >= minMonthly && monthly <= maxMonthly && monthly > best {
			best = monthly
		}
	}

	if best == 0 {
		return 0, false
	}
	return best, true
}
