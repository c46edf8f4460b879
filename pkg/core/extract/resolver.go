package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mdna_extract/pkg/core/filing"
	"mdna_extract/pkg/core/section"
)

// DirectoryResolver resolves incorporation-by-reference against a local
// directory of companion documents (the exhibits or annual report portions
// downloaded alongside the filings). Lookup is by CIK: any text file whose
// name contains the filing's CIK, padded or not, is a candidate.
type DirectoryResolver struct {
	dir string
}

func NewDirectoryResolver(dir string) *DirectoryResolver {
	return &DirectoryResolver{dir: dir}
}

// Resolve returns the text of the first companion document matching the
// filing's CIK. Empty text or no match means the reference stays unresolved.
func (r *DirectoryResolver) Resolve(ref *section.IncorporationRef, f *filing.Filing) (string, error) {
	if r.dir == "" {
		return "", fmt.Errorf("no reference directory configured")
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read reference dir %s: %w", r.dir, err)
	}

	shortCIK := strings.TrimLeft(f.CIK, "0")
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		if !strings.Contains(entry.Name(), f.CIK) && !strings.Contains(entry.Name(), shortCIK) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			continue
		}
		if len(strings.TrimSpace(string(data))) > 0 {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("no companion document for CIK %s (%s)", f.CIK, ref.DocumentType)
}
