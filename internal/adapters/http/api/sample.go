package api

import (
	"fmt"
	"net/http"

	"github.com/okian/sampleapi/internal/domain/sample"
	"github.com/okian/sampleapi/pkg/metrics"
)

// SampleHandler handles sample requests.
type SampleHandler struct {
	sampler sample.Sampler
}

// NewSampleHandler creates a new sample handler.
func NewSampleHandler(sampler sample.Sampler) *SampleHandler {
	return &SampleHandler{sampler: sampler}
}

// HandleSample handles GET /sample requests by returning the sampler output
// as-is: strings as plain text, anything else as JSON.
func (h *SampleHandler) HandleSample(w http.ResponseWriter, r *http.Request) {
	v, err := h.sampler.Sample(r.Context())
	if err != nil {
		metrics.RecordSampleError()
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%w: %w", ErrInternal, err))
		return
	}

	switch body := v.(type) {
	case string:
		writeText(w, r, http.StatusOK, body)
	case []byte:
		writeText(w, r, http.StatusOK, string(body))
	default:
		writeJSON(w, r, http.StatusOK, body)
	}
}
