package report

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) SourceLoaded(summary SourceSummary) {
	for _, r := range c.reporters {
		r.SourceLoaded(summary)
	}
}

func (c *CompositeReporter) ToolStarted(info ToolStartInfo) {
	for _, r := range c.reporters {
		r.ToolStarted(info)
	}
}

func (c *CompositeReporter) PlanComputed(summary PlanSummary) {
	for _, r := range c.reporters {
		r.PlanComputed(summary)
	}
}

func (c *CompositeReporter) ToolProgress(update ToolProgress) {
	for _, r := range c.reporters {
		r.ToolProgress(update)
	}
}

func (c *CompositeReporter) ArtifactReady(artifact ArtifactSummary) {
	for _, r := range c.reporters {
		r.ArtifactReady(artifact)
	}
}

func (c *CompositeReporter) ToolComplete(summary ToolOutcome) {
	for _, r := range c.reporters {
		r.ToolComplete(summary)
	}
}

func (c *CompositeReporter) BatchStarted(info BatchStartInfo) {
	for _, r := range c.reporters {
		r.BatchStarted(info)
	}
}

func (c *CompositeReporter) FileProgress(context FileProgressContext) {
	for _, r := range c.reporters {
		r.FileProgress(context)
	}
}

func (c *CompositeReporter) BatchComplete(summary BatchSummary) {
	for _, r := range c.reporters {
		r.BatchComplete(summary)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
