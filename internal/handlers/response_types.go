package handlers

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"Validation error details"`
}

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
