package models

import "time"

// Record represents one entity parsed from a listing card: a startup, product,
// tool or company depending on the site. Name is the only mandatory field; a
// Record with an empty Name must never be constructed (parsers return nil
// instead of a nameless record).
type Record struct {
	Name          string   `json:"name"`
	URL           string   `json:"url,omitempty"`
	Website       string   `json:"website,omitempty"`
	LinkedInURL   string   `json:"linkedin_url,omitempty"`
	Description   string   `json:"description,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Location      string   `json:"location,omitempty"`
	Stage         string   `json:"stage,omitempty"`
	Employees     string   `json:"employees,omitempty"`
	Price         string   `json:"price,omitempty"`
	OriginalPrice string   `json:"original_price,omitempty"`
	LogoURL       string   `json:"logo_url,omitempty"`
	Rank          int      `json:"rank,omitempty"`
	Votes         int      `json:"votes,omitempty"`
	Comments      int      `json:"comments,omitempty"`
	Reviews       int      `json:"reviews,omitempty"`
	FoundedYear   int      `json:"founded_year,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Badges        []string `json:"badges,omitempty"`
	Notes         []string `json:"notes,omitempty"`
}

// RunInput contains the caller-supplied parameters for one agent run.
type RunInput struct {
	URL        string `json:"url"`
	MaxRecords int    `json:"max_records,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	// LastDays restricts recency-aware agents (BetaList) to entries published
	// within the last N days. Zero means no filter.
	LastDays int `json:"last_days,omitempty"`
	// Optional credentials for agents that sit behind a login (Station F).
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// RunResult pairs a finished report with run metadata surfaced by the API.
type RunResult struct {
	RunID      string        `json:"run_id"`
	Agent      string        `json:"agent"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Report     *Report       `json:"report"`
}
