package lead

// UpdateStatusRequest moves a lead to a new follow-up status.
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=new contacted qualified converted rejected lost"`
	Notes  string `json:"notes"`
}

// ListResponse is the paginated admin listing.
type ListResponse struct {
	Leads []*Submission `json:"leads"`
	Total int           `json:"total"`
}

// StatsResponse aggregates the pipeline.
type StatsResponse struct {
	ByStatus         map[Status]int `json:"by_status"`
	ByClassification map[string]int `json:"by_classification"`
}
