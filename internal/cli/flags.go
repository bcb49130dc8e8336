package cli

import "tcat/internal/config"

// Flags holds command-line flags
type Flags struct {
	Verbosity   int
	ProjectPath string
	SourcePath  string
	Workers     int
	NameFilter  string
	FilePattern string
	Area        string
	Category    string
	Tags        []string
	MaxPriority int
	ShowCases   bool
	From        string
	Output      string
	Metrics     string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Verbosity:   f.Verbosity,
		SourcePath:  f.SourcePath,
		Workers:     f.Workers,
		NameFilter:  f.NameFilter,
		FilePattern: f.FilePattern,
		Area:        f.Area,
		Category:    f.Category,
		Tags:        f.Tags,
		MaxPriority: f.MaxPriority,
		ShowCases:   f.ShowCases,
		From:        f.From,
		Output:      f.Output,
		Metrics:     f.Metrics,
	}
}
