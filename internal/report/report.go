package report

// Reporter defines the interface for progress reporting.
type Reporter interface {
	SourceLoaded(summary SourceSummary)
	ToolStarted(info ToolStartInfo)
	PlanComputed(summary PlanSummary)
	ToolProgress(update ToolProgress)
	ArtifactReady(artifact ArtifactSummary)
	ToolComplete(summary ToolOutcome)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	BatchComplete(summary BatchSummary)
	Warning(message string)
	Error(err ReporterError)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) SourceLoaded(SourceSummary)       {}
func (NullReporter) ToolStarted(ToolStartInfo)        {}
func (NullReporter) PlanComputed(PlanSummary)         {}
func (NullReporter) ToolProgress(ToolProgress)        {}
func (NullReporter) ArtifactReady(ArtifactSummary)    {}
func (NullReporter) ToolComplete(ToolOutcome)         {}
func (NullReporter) BatchStarted(BatchStartInfo)      {}
func (NullReporter) FileProgress(FileProgressContext) {}
func (NullReporter) BatchComplete(BatchSummary)       {}
func (NullReporter) Warning(string)                   {}
func (NullReporter) Error(ReporterError)              {}
func (NullReporter) Verbose(string)                   {}
