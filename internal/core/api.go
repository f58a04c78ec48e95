package core

// Request types

type PredictRequest struct {
	FEN string `json:"fen" validate:"required,max=100"`
}

// Response types

// PredictResponse carries the predicted move; Move is null when the position has no legal moves
type PredictResponse struct {
	Move *string `json:"move"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Time   int64  `json:"time"`
	Engine string `json:"engine"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Error codes
const (
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidFEN        = "INVALID_FEN"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrPredictionFailed  = "PREDICTION_FAILED"
	ErrNotFound          = "NOT_FOUND"
	ErrInternalError     = "INTERNAL_ERROR"
)
