// Package filing derives filing identity (CIK, company, form type, date) from
// EDGAR-style filenames and filing header text.
package filing

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// ErrMissingMetadata is returned when neither the filename nor the header
// yields a CIK and a form type. Both are mandatory.
var ErrMissingMetadata = errors.New("missing required filing metadata (CIK or form type)")

// Filing identifies one source document.
type Filing struct {
	Path        string    `json:"path"`
	CIK         string    `json:"cik"` // zero-padded to 10 digits
	CompanyName string    `json:"company_name"`
	FormType    string    `json:"form_type"`
	FilingDate  time.Time `json:"filing_date"`
	Size        int64     `json:"size"`
}

// How much of the document head is searched for labeled metadata fields.
const headerWindow = 5000

var (
	filenameMeta = regexp.MustCompile(`(?i)(\d{8})_(10-[KQ](?:/A)?)_edgar_data_(\d{1,10})_([0-9\-]+)\.txt`)

	cikPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)CENTRAL INDEX KEY:\s*(\d+)`),
		regexp.MustCompile(`(?i)CIK:\s*(\d+)`),
		regexp.MustCompile(`(?i)C\.I\.K\.\s*NO\.\s*(\d+)`),
	}
	formPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)FORM\s+TYPE:\s*(10-[KQ])(/A)?`),
		regexp.MustCompile(`(?i)FORM\s+(10-[KQ])(/A)?`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)FILED AS OF DATE:\s*(\d{8})`),
		regexp.MustCompile(`(?i)DATE OF REPORT[^:]*:\s*(\d{4}-\d{2}-\d{2})`),
	}
	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)COMPANY\s*CONFORMED\s*NAME:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)CONFORMED\s*NAME:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)REGISTRANT\s*NAME:\s*([^\n]+)`),
	}
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^\w\s\-]`)
)

// FromDocument derives a Filing from the filename and, where the filename is
// silent, from labeled header fields in the first few thousand characters of
// the parsing view. CIK and form type are mandatory.
func FromDocument(path, content string) (*Filing, error) {
	f := &Filing{Path: path}

	cik, date, form := parseFilename(path)
	f.CIK, f.FilingDate, f.FormType = cik, date, form

	head := content
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}

	if f.CIK == "" {
		f.CIK = extractCIK(head)
	}
	if f.FormType == "" {
		f.FormType = extractFormType(head)
	}
	if f.FilingDate.IsZero() {
		f.FilingDate = extractFilingDate(head)
	}
	f.CompanyName = extractCompanyName(head)

	if f.CIK == "" || f.FormType == "" {
		return nil, fmt.Errorf("%w: cik=%q form=%q (%s)", ErrMissingMetadata, f.CIK, f.FormType, path)
	}

	if info, err := os.Stat(path); err == nil {
		f.Size = info.Size()
	}
	return f, nil
}

// Year returns the filing year, or 0 when the date is unknown.
func (f *Filing) Year() int {
	if f.FilingDate.IsZero() {
		return 0
	}
	return f.FilingDate.Year()
}

// OutputFilename derives the deterministic output name:
// (CIK)_(Company)_(YYYY-MM-DD)_(FORM).txt
func (f *Filing) OutputFilename() string {
	date := "unknown"
	if !f.FilingDate.IsZero() {
		date = f.FilingDate.Format("2006-01-02")
	}
	company := SanitizeFilename(f.CompanyName)
	form := strings.ReplaceAll(f.FormType, "/", "_")
	return fmt.Sprintf("(%s)_(%s)_(%s)_(%s).txt", f.CIK, company, date, form)
}

// parseFilename reads metadata out of the EDGAR bulk-download filename shape
// YYYYMMDD_FORM_edgar_data_CIK_ACCESSION.txt.
func parseFilename(path string) (cik string, date time.Time, form string) {
	m := filenameMeta.FindStringSubmatch(path)
	if m == nil {
		return "", time.Time{}, ""
	}
	if d, err := time.Parse("20060102", m[1]); err == nil {
		date = d
	}
	form = strings.ToUpper(m[2])
	cik = PadCIK(m[3])
	return cik, date, form
}

func extractCIK(head string) string {
	for _, re := range cikPatterns {
		if m := re.FindStringSubmatch(head); m != nil {
			return PadCIK(m[1])
		}
	}
	return ""
}

func extractFormType(head string) string {
	for _, re := range formPatterns {
		if m := re.FindStringSubmatch(head); m != nil {
			form := strings.ToUpper(m[1])
			if m[2] != "" {
				form += "/A"
			}
			return form
		}
	}
	upper := strings.ToUpper(head)
	if strings.Contains(upper, "FORM 10-Q") {
		return "10-Q"
	}
	if strings.Contains(upper, "FORM 10-K") {
		return "10-K"
	}
	return ""
}

func extractFilingDate(head string) time.Time {
	for _, re := range datePatterns {
		m := re.FindStringSubmatch(head)
		if m == nil {
			continue
		}
		for _, layout := range []string{"20060102", "2006-01-02"} {
			if d, err := time.Parse(layout, m[1]); err == nil {
				return d
			}
		}
	}
	return time.Time{}
}

func extractCompanyName(head string) string {
	for _, re := range companyPatterns {
		m := re.FindStringSubmatch(head)
		if m == nil {
			continue
		}
		name := whitespaceRun.ReplaceAllString(strings.TrimSpace(m[1]), " ")
		if len(name) > 3 && len(name) < 100 {
			return name
		}
	}
	return "Unknown Company"
}

// PadCIK zero-pads a CIK to the canonical 10 digits.
func PadCIK(cik string) string {
	cik = strings.TrimSpace(cik)
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

// SanitizeFilename strips characters that are unsafe in filenames and caps
// the length at 50 characters.
func SanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = strings.Trim(name, " .")
	if len(name) > 50 {
		name = strings.TrimSpace(name[:50])
	}
	return name
}
