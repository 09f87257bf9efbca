package chi

// analysisForm is the validated multipart form of POST /v1/analyses.
type analysisForm struct {
	Filename       string `validate:"required,max=255"`
	JobDescription string `validate:"max=50000"`
}

// AnalysisResponse is the JSON body of a successful analysis.
type AnalysisResponse struct {
	ID              string   `json:"id"`
	LexicalScore    float64  `json:"lexical_score"`
	SemanticScore   float64  `json:"semantic_score"`
	FinalScore      float64  `json:"final_score"`
	Verdict         string   `json:"verdict"`
	Tip             string   `json:"tip"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest           ErrorCode = "bad_request"
	ErrorCodeValidationFailed     ErrorCode = "validation_failed"
	ErrorCodePayloadTooLarge      ErrorCode = "payload_too_large"
	ErrorCodeUnsupportedFormat    ErrorCode = "unsupported_format"
	ErrorCodeExtractionFailed     ErrorCode = "extraction_failed"
	ErrorCodeEmbeddingUnavailable ErrorCode = "embedding_unavailable"
	ErrorCodeRateLimited          ErrorCode = "rate_limited"
	ErrorCodeInternalError        ErrorCode = "internal_error"
)
