package slidesapi

import "google.golang.org/api/slides/v1"

// NewBatch wraps requests in a batch-update body.
func NewBatch(reqs []*slides.Request) *slides.BatchUpdatePresentationRequest {
	return &slides.BatchUpdatePresentationRequest{Requests: reqs}
}

// SplitBatches chunks reqs into batches of at most size requests. A
// non-positive size yields a single batch.
func SplitBatches(reqs []*slides.Request, size int) [][]*slides.Request {
	if len(reqs) == 0 {
		return nil
	}
	if size <= 0 || len(reqs) <= size {
		return [][]*slides.Request{reqs}
	}
	var out [][]*slides.Request
	for start := 0; start < len(reqs); start += size {
		out = append(out, reqs[start:min(start+size, len(reqs))])
	}
	return out
}
