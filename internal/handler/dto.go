package handler

// SubscribeRequest is the body for subscribe and unsubscribe calls.
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// StatusResponse is the generic success/message envelope.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CountResponse carries the active subscriber count.
type CountResponse struct {
	Count int `json:"count"`
}

// TriggerResponse reports the outcome of a manually triggered run.
type TriggerResponse struct {
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
	DigestsProcessed int    `json:"digests_processed"`
	EmailsSent       int    `json:"emails_sent"`
	Duration         string `json:"duration"`
}
