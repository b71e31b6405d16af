// Package report provides progress reporting interfaces and implementations.
package report

// SourceSummary describes the media source before a tool runs.
type SourceSummary struct {
	InputFile  string
	Duration   string
	Resolution string
	HasVideo   bool
	HasAudio   bool
}

// ToolStartInfo announces a tool run against one input.
type ToolStartInfo struct {
	Tool      string
	InputFile string
	OutputDir string
	Detail    string
}

// ToolProgress is a progress update within a tool run. Stage names the
// pipeline phase; CurrentUnit and TotalUnits are zero for stages that do
// not iterate over planned units.
type ToolProgress struct {
	Stage       string
	Percent     float64
	Message     string
	CurrentUnit int
	TotalUnits  int
}

// PlanSummary describes the planned units of work for a run.
type PlanSummary struct {
	Units      int
	UnitLength float64
	// LastShort marks that the final unit is shorter than UnitLength.
	LastShort bool
}

// ArtifactSummary describes one produced output file.
type ArtifactSummary struct {
	Name string
	Size uint64
}

// ToolOutcome contains final tool run results.
type ToolOutcome struct {
	Tool       string
	InputFile  string
	Artifacts  int
	TotalSize  uint64
	OutputDir  string
	ElapsedSec float64
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains the current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount int
	TotalFiles      int
	TotalArtifacts  int
	TotalSize       uint64
	Failures        []FileFailure
}

// FileFailure records a per-file error within a batch.
type FileFailure struct {
	Filename string
	Reason   string
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}
