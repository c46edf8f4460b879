package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/hjson/hjson-go/v4"

	"mdna_extract/pkg/core/filing"
)

// Filter decides which filings a batch run processes.
type Filter interface {
	ShouldProcess(f *filing.Filing) bool
}

// AllowAll is the filter used when no filter file is configured.
type AllowAll struct{}

func (AllowAll) ShouldProcess(*filing.Filing) bool { return true }

// FileFilter restricts a batch run to the CIKs, form types and filing years
// listed in an HJSON filter file. Empty lists mean no restriction on that
// dimension.
type FileFilter struct {
	ciks  map[string]bool
	forms map[string]bool
	years map[int]bool
}

// filterSpec is the on-disk shape of a filter file:
//
//	{
//	  ciks: ["320193", "789019"]
//	  form_types: ["10-K"]
//	  years: [2022, 2023]
//	}
type filterSpec struct {
	CIKs      []string `json:"ciks"`
	FormTypes []string `json:"form_types"`
	Years     []int    `json:"years"`
}

// LoadFilter reads a filter file. HJSON is used so the file tolerates
// comments and trailing commas.
func LoadFilter(path string) (*FileFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter file %s: %w", path, err)
	}

	var spec filterSpec
	if err := hjson.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse filter file %s: %w", path, err)
	}

	f := &FileFilter{
		ciks:  make(map[string]bool, len(spec.CIKs)),
		forms: make(map[string]bool, len(spec.FormTypes)),
		years: make(map[int]bool, len(spec.Years)),
	}
	for _, cik := range spec.CIKs {
		f.ciks[filing.PadCIK(cik)] = true
	}
	for _, form := range spec.FormTypes {
		f.forms[strings.ToUpper(strings.TrimSpace(form))] = true
	}
	for _, year := range spec.Years {
		f.years[year] = true
	}
	return f, nil
}

// ShouldProcess reports whether the filing passes every configured dimension.
func (f *FileFilter) ShouldProcess(fil *filing.Filing) bool {
	if len(f.ciks) > 0 && !f.ciks[fil.CIK] {
		return false
	}
	if len(f.forms) > 0 && !f.forms[strings.ToUpper(fil.FormType)] {
		return false
	}
	if len(f.years) > 0 && !f.years[fil.Year()] {
		return false
	}
	return true
}
