package domain

// Competitor is one tracked vendor with its official domains, in the order
// they should be crawled.
type Competitor struct {
	Key     string
	Domains []string
}

// ResearchDocument is a fetched and cleaned web source used as grounding
// context for the assistant. URL is unique within one gathering run.
type ResearchDocument struct {
	Title  string
	URL    string
	Source string
	Text   string
}

// Run statuses reported by the remote assistant API.
const (
	RunQueued     = "queued"
	RunInProgress = "in_progress"
	RunCompleted  = "completed"
	RunFailed     = "failed"
	RunCancelled  = "cancelled"
	RunExpired    = "expired"
)
