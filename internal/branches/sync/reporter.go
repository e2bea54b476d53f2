package sync

import (
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/temirov/gitsync/internal/gitrepo"
)

const (
	batchStartedTemplateConstant      = "ℹ️ Preparing to process %d repositories (target branch: %s, mode: %s)\n"
	forceModeLabelConstant            = "force"
	normalModeLabelConstant           = "normal"
	repositoryStartedTemplateConstant = "\nℹ️ Processing repository: %s (%d/%d)\n"
	branchTransitionTemplateConstant  = "  current branch: %s -> target branch: %s\n"
	pendingChangesTemplateConstant    = "  ⚠️ %d uncommitted changes detected\n"
	outcomeSuccessTemplateConstant    = "  ✅ ok: %s\n"
	outcomeFailureTemplateConstant    = "  ❌ failed: %s\n"
	outcomeDetailTemplateConstant     = "%s\n"
	outcomeSuggestionTemplateConstant = "  💡 suggestion: %s\n"
	summaryHeaderConstant             = "\nBatch summary:\n"
	summarySucceededTemplateConstant  = "  succeeded: %d repositories\n"
	summaryFailedTemplateConstant     = "  failed: %d repositories\n"
)

// ProgressReporter renders batch progress for operator visibility.
type ProgressReporter interface {
	BatchStarted(repositoryCount int, options Options)
	RepositoryStarted(repositoryPath string, sequenceNumber int, repositoryCount int, status gitrepo.RepositoryStatus, options Options)
	RepositoryCompleted(outcome SyncOutcome)
	BatchCompleted(summary BatchSummary)
}

// NoopProgressReporter discards all progress events.
type NoopProgressReporter struct{}

// BatchStarted implements ProgressReporter for the no-op reporter.
func (NoopProgressReporter) BatchStarted(int, Options) {}

// RepositoryStarted implements ProgressReporter for the no-op reporter.
func (NoopProgressReporter) RepositoryStarted(string, int, int, gitrepo.RepositoryStatus, Options) {}

// RepositoryCompleted implements ProgressReporter for the no-op reporter.
func (NoopProgressReporter) RepositoryCompleted(SyncOutcome) {}

// BatchCompleted implements ProgressReporter for the no-op reporter.
func (NoopProgressReporter) BatchCompleted(BatchSummary) {}

// ConsoleProgressReporter renders colored progress lines to a writer.
type ConsoleProgressReporter struct {
	writer       io.Writer
	infoColor    *color.Color
	successColor *color.Color
	failureColor *color.Color
	warningColor *color.Color
}

// NewConsoleProgressReporter constructs a reporter writing to the provided writer.
func NewConsoleProgressReporter(writer io.Writer) *ConsoleProgressReporter {
	return &ConsoleProgressReporter{
		writer:       writer,
		infoColor:    color.New(color.FgCyan),
		successColor: color.New(color.FgGreen),
		failureColor: color.New(color.FgRed),
		warningColor: color.New(color.FgYellow),
	}
}

// BatchStarted announces the batch scope and mode.
func (reporter *ConsoleProgressReporter) BatchStarted(repositoryCount int, options Options) {
	modeLabel := normalModeLabelConstant
	if options.Force {
		modeLabel = forceModeLabelConstant
	}
	reporter.infoColor.Fprintf(reporter.writer, batchStartedTemplateConstant, repositoryCount, options.BranchName, modeLabel)
}

// RepositoryStarted prints the pre-sync status for one repository.
func (reporter *ConsoleProgressReporter) RepositoryStarted(repositoryPath string, sequenceNumber int, repositoryCount int, status gitrepo.RepositoryStatus, options Options) {
	reporter.infoColor.Fprintf(reporter.writer, repositoryStartedTemplateConstant, filepath.Base(repositoryPath), sequenceNumber, repositoryCount)
	if !status.IsValid {
		return
	}
	reporter.infoColor.Fprintf(reporter.writer, branchTransitionTemplateConstant, status.CurrentBranch, options.BranchName)
	if status.HasChanges() {
		reporter.warningColor.Fprintf(reporter.writer, pendingChangesTemplateConstant, status.ChangeCount())
	}
}

// RepositoryCompleted prints the outcome of one synchronization attempt.
func (reporter *ConsoleProgressReporter) RepositoryCompleted(outcome SyncOutcome) {
	if outcome.Success {
		reporter.successColor.Fprintf(reporter.writer, outcomeSuccessTemplateConstant, outcome.Message)
		return
	}
	reporter.failureColor.Fprintf(reporter.writer, outcomeFailureTemplateConstant, outcome.Error)
	if len(outcome.Message) > 0 {
		reporter.infoColor.Fprintf(reporter.writer, outcomeDetailTemplateConstant, outcome.Message)
	}
	if len(outcome.Suggestion) > 0 {
		reporter.infoColor.Fprintf(reporter.writer, outcomeSuggestionTemplateConstant, outcome.Suggestion)
	}
}

// BatchCompleted prints the aggregate statistics for the batch.
func (reporter *ConsoleProgressReporter) BatchCompleted(summary BatchSummary) {
	reporter.infoColor.Fprintf(reporter.writer, summaryHeaderConstant)
	reporter.successColor.Fprintf(reporter.writer, summarySucceededTemplateConstant, summary.Succeeded)
	if summary.Failed > 0 {
		reporter.failureColor.Fprintf(reporter.writer, summaryFailedTemplateConstant, summary.Failed)
		return
	}
	reporter.infoColor.Fprintf(reporter.writer, summaryFailedTemplateConstant, summary.Failed)
}
