package document

import "time"

// Page is one rasterized page image awaiting recognition. The pipeline owns
// it only while that page is being processed; the image is discarded as soon
// as its text is extracted.
type Page struct {
	// Index is the 1-based page ordinal, matching document page order.
	Index int

	// Image is the encoded page image (PNG for rasterized PDF pages, the
	// original bytes for single-image inputs).
	Image []byte
}

// PageResult is the recognition result for one page ordinal. A failed page
// still occupies its ordinal, with Ok false and the error description in Err.
type PageResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Ok    bool   `json:"ok"`
	Err   string `json:"error,omitempty"`
}

// RunOutcome is the terminal value of one pipeline invocation.
type RunOutcome struct {
	// Text is the aggregate output: page bodies in ordinal order with a
	// boundary marker line between consecutive pages.
	Text string `json:"text"`

	// PagesTotal is the number of page ordinals present in the outcome.
	PagesTotal int `json:"pages_total"`

	// PagesFailed counts pages whose recognition failed.
	PagesFailed int `json:"pages_failed"`

	// Errors holds one description per failed page, in ordinal order.
	Errors []string `json:"errors,omitempty"`

	// Cancelled reports that the run was stopped at a page boundary on the
	// caller's request. A cancelled outcome is partial, not failed.
	Cancelled bool `json:"cancelled,omitempty"`

	// ProcessedAt is when the run finished.
	ProcessedAt time.Time `json:"processed_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
}
