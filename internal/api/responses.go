package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// ConflictResponse marks concurrency conflicts as retryable so clients can
// distinguish them from business-rule rejections.
type ConflictResponse struct {
	Error     string `json:"error" example:"concurrent update, please retry"`
	Retryable bool   `json:"retryable" example:"true"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
