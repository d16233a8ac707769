package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Hardware(summary HardwareSummary)
	ConnectStarted(summary ConnectSummary)
	StateChanged(change StateChange)
	TransferProgress(progress TransferProgress)
	TransferComplete(summary TransferOutcome)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)         {}
func (NullReporter) ConnectStarted(ConnectSummary)    {}
func (NullReporter) StateChanged(StateChange)         {}
func (NullReporter) TransferProgress(TransferProgress) {}
func (NullReporter) TransferComplete(TransferOutcome) {}
func (NullReporter) Warning(string)                   {}
func (NullReporter) Error(ReporterError)               {}
func (NullReporter) OperationComplete(string)          {}
func (NullReporter) Verbose(string)                    {}
