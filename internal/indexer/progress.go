package indexer

import "time"

// ProgressReporter provides callbacks for reporting analysis progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnParsingStart is called before the parse phase.
	OnParsingStart(totalFiles int)

	// OnFileParsed is called after each file is parsed or fails to parse.
	// It is called concurrently from parse workers.
	OnFileParsed(path string)

	// OnParsingComplete is called after all parse workers have joined.
	OnParsingComplete(parsed, failed int, duration time.Duration)

	// Graph building progress
	OnGraphBuildingStart(totalFiles int)
	OnGraphBuildingComplete(nodeCount, edgeCount int, duration time.Duration)

	// OnComplete is called when the analysis completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                                     {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)                         {}
func (n *NoOpProgressReporter) OnParsingStart(totalFiles int)                         {}
func (n *NoOpProgressReporter) OnFileParsed(path string)                              {}
func (n *NoOpProgressReporter) OnParsingComplete(parsed, failed int, d time.Duration) {}
func (n *NoOpProgressReporter) OnGraphBuildingStart(totalFiles int)                   {}
func (n *NoOpProgressReporter) OnGraphBuildingComplete(nodeCount, edgeCount int, duration time.Duration) {
}
func (n *NoOpProgressReporter) OnComplete(stats *Stats) {}
