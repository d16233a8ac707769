package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) Hardware(summary HardwareSummary) {
	for _, r := range c.reporters {
		r.Hardware(summary)
	}
}

func (c *CompositeReporter) ConnectStarted(summary ConnectSummary) {
	for _, r := range c.reporters {
		r.ConnectStarted(summary)
	}
}

func (c *CompositeReporter) StateChanged(change StateChange) {
	for _, r := range c.reporters {
		r.StateChanged(change)
	}
}

func (c *CompositeReporter) TransferProgress(progress TransferProgress) {
	for _, r := range c.reporters {
		r.TransferProgress(progress)
	}
}

func (c *CompositeReporter) TransferComplete(summary TransferOutcome) {
	for _, r := range c.reporters {
		r.TransferComplete(summary)
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

func (c *CompositeReporter) OperationComplete(message string) {
	for _, r := range c.reporters {
		r.OperationComplete(message)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
