package model

// ResolveRequest represents a single address resolution request
type ResolveRequest struct {
	Address string `json:"address"`
}

// BulkItem is one address in a bulk request
type BulkItem struct {
	Index   int    `json:"index"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
}

// BulkRequest represents a bulk resolution request
type BulkRequest struct {
	Items []BulkItem `json:"items" binding:"required"`
}

// BulkItemResult is the per-item outcome of a bulk request
type BulkItemResult struct {
	Index          int                     `json:"index"`
	Result         AddressResolutionResult `json:"result"`
	Phone          string                  `json:"phone,omitempty"`
	RemoteArea     bool                    `json:"remote_area"`
	LengthExceeded bool                    `json:"length_exceeded"`
}

// BulkSummary aggregates bulk outcomes
type BulkSummary struct {
	Total          int `json:"total"`
	Valid          int `json:"valid"`
	Warning        int `json:"warning"`
	Invalid        int `json:"invalid"`
	RemoteArea     int `json:"remote_area"`
	LengthExceeded int `json:"length_exceeded"`
}

// BulkResponse represents a bulk resolution response
type BulkResponse struct {
	RequestID string           `json:"request_id"`
	Results   []BulkItemResult `json:"results"`
	Summary   BulkSummary      `json:"summary"`
	Took      int64            `json:"took_ms"` // Response time in milliseconds
}

// CorrectionRequest records a human correction of a detail address
type CorrectionRequest struct {
	Original      string        `json:"original" binding:"required"`
	Corrected     string        `json:"corrected" binding:"required"`
	BuildingClass BuildingClass `json:"building_class" binding:"required"`
}

// CorrectionResponse represents correction response
type CorrectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// PatternBatchRequest registers detail patterns
type PatternBatchRequest struct {
	Patterns []DetailPattern `json:"patterns" binding:"required"`
}

// PatternBatchResponse represents the response for batch pattern registration
type PatternBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
