package config

// DocumentConfig holds per-document settings from the config file.
// Any zero field falls back to the file's defaults, then to the
// built-in defaults.
type DocumentConfig struct {
	// PageBackground is the fallback background hex for this
	// document, overriding the document's own page fill.
	PageBackground string `yaml:"pageBackground,omitempty"`

	// Selection restricts the audit to these node identifiers.
	Selection []string `yaml:"selection,omitempty"`

	// MaxVisits overrides the traversal visit cap.
	MaxVisits int `yaml:"maxVisits,omitempty"`

	// MaxCandidates overrides the candidate cap.
	MaxCandidates int `yaml:"maxCandidates,omitempty"`
}

// File represents the structure of the .contrastscan configuration
// file.
type File struct {
	// Documents maps document paths (as given on the command line) to
	// their per-document settings.
	Documents map[string]DocumentConfig `yaml:"documents,omitempty"`

	// Defaults applies to every document unless overridden.
	Defaults DocumentConfig `yaml:"defaults,omitempty"`
}

// ForDocument returns the configuration for one document path, merging
// the per-document section over the file defaults.
func (f *File) ForDocument(path string) DocumentConfig {
	result := f.Defaults
	dc, ok := f.Documents[path]
	if !ok {
		return result
	}
	if dc.PageBackground != "" {
		result.PageBackground = dc.PageBackground
	}
	if len(dc.Selection) > 0 {
		result.Selection = dc.Selection
	}
	if dc.MaxVisits != 0 {
		result.MaxVisits = dc.MaxVisits
	}
	if dc.MaxCandidates != 0 {
		result.MaxCandidates = dc.MaxCandidates
	}
	return result
}
