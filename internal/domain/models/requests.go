package models

// Requests for the scan API endpoints. Defined in domain for consistency and reuse.

type ScanRequest struct {
	Tickers []string `json:"tickers" validate:"omitempty,max=500,dive,required"`
	DryRun  bool     `json:"dry_run"`
	Async   bool     `json:"async"`
}

type RecordsRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	Since  string `query:"since" json:"since"`
	Limit  int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=500"`
}

type RunRequest struct {
	RunID string `query:"run_id" json:"run_id"`
}
