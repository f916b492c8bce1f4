package internal

// Pipeline wires the CPU-bound stages: reconstruction, commit assignment,
// polishing, categorization, deduplication. There is no shared mutable
// state between stages; each consumes the previous stage's session list
// and contributes its delta to the run report.
type Pipeline struct {
	Reconstructor *Reconstructor
	Assigner      *Assigner
	Polisher      *Polisher
	Deduplicator  *Deduplicator
	Classifier    Classifier
}

// NewPipeline creates a Pipeline with default stage configurations
func NewPipeline() *Pipeline {
	return &Pipeline{
		Reconstructor: NewReconstructor(),
		Assigner:      NewAssigner(),
		Polisher:      NewPolisher(),
		Deduplicator:  NewDeduplicator(),
		Classifier:    NewKeywordClassifier(),
	}
}

// Run executes every local stage over the raw inputs and returns the
// deduplicated session list, recording per-stage counts in the report.
// Stage-local problems (rejected intervals, dropped sessions, duplicates)
// are recovered in place and never halt the run.
func (p *Pipeline) Run(events []RawEvent, commits []RawCommit, report *RunReport) []*WorkSession {
	recon := p.Reconstructor.Reconstruct(events)
	report.Reconstructed = len(recon.Sessions)
	report.RejectedIntervals = recon.Rejected
	report.Merged = recon.Merged
	report.Truncated = recon.Truncated
	LogInfo("Reconstructed %d session(s) (%d merged, %d truncated, %d rejected)",
		len(recon.Sessions), recon.Merged, recon.Truncated, len(recon.Rejected))

	assigned := p.Assigner.Assign(recon.Sessions, commits)
	report.CommitsContained = assigned.Contained
	report.CommitsAdjacent = assigned.Adjacent
	report.CommitsOrphaned = assigned.Orphaned
	report.SyntheticSessions = assigned.Synthetic
	LogInfo("Assigned commits: %d contained, %d adjacent, %d orphaned, %d synthetic session(s)",
		assigned.Contained, assigned.Adjacent, assigned.Orphaned, assigned.Synthetic)

	polished := p.Polisher.Polish(assigned.Sessions)
	report.BreaksInjected = polished.Breaks
	report.Dropped = polished.Dropped

	CategorizeSessions(polished.Sessions, p.Classifier)

	deduped := p.Deduplicator.Deduplicate(polished.Sessions)
	report.Duplicates = deduped.Duplicates

	return deduped.Sessions
}
