package buildscript

import (
	"fmt"
	"strings"
)

// Region is a marker-delimited span of the shared build script.
// Text strictly between the end of Start and the beginning of End belongs to the merger.
type Region struct {
	Name  string
	Start string
	End   string

	// EndIndent is written right before End so the end marker keeps its indentation
	EndIndent string
}

var (
	// DependenciesRegion holds one implementation line per library coordinate
	DependenciesRegion = Region{
		Name:      "dependencies",
		Start:     "SUB-PROJECT DEPENDENCIES START",
		End:       "// SUB-PROJECT DEPENDENCIES END",
		EndIndent: "    ",
	}

	// ExtensionsRegion holds one apply line per build-script fragment
	ExtensionsRegion = Region{
		Name:  "extensions",
		Start: "PLUGIN GRADLE EXTENSIONS START",
		End:   "// PLUGIN GRADLE EXTENSIONS END",
	}
)

// Regions lists every region the merger owns, in rewrite order
func Regions() []Region {
	return []Region{DependenciesRegion, ExtensionsRegion}
}

// Find returns the owned span [from, to) of the region in text.
// The first start marker is used, paired with the first end marker after it.
func (r Region) Find(text string) (from, to int, err error) {
	start := strings.Index(text, r.Start)
	if start < 0 {
		return 0, 0, &StructuralError{Region: r.Name, Err: ErrMarkerNotFound, Detail: fmt.Sprintf("%q", r.Start)}
	}
	from = start + len(r.Start)

	end := strings.Index(text[from:], r.End)
	if end < 0 {
		if strings.Contains(text[:start], r.End) {
			return 0, 0, &StructuralError{Region: r.Name, Err: ErrMarkerOrder, Detail: fmt.Sprintf("%q", r.End)}
		}
		return 0, 0, &StructuralError{Region: r.Name, Err: ErrMarkerNotFound, Detail: fmt.Sprintf("%q", r.End)}
	}
	return from, from + end, nil
}

// Content renders block as the text placed between the markers
func (r Region) Content(block string) string {
	if block == "" {
		return "\n" + r.EndIndent
	}
	return "\n" + block + "\n" + r.EndIndent
}

// Replace rewrites the owned span of the region and leaves everything else untouched
func (r Region) Replace(text, block string) (string, error) {
	from, to, err := r.Find(text)
	if err != nil {
		return "", err
	}
	return text[:from] + r.Content(block) + text[to:], nil
}

// Extract returns the text currently owned by the region
func (r Region) Extract(text string) (string, error) {
	from, to, err := r.Find(text)
	if err != nil {
		return "", err
	}
	return text[from:to], nil
}
