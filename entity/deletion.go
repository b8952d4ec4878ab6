package entity

type DeletionOutcome string

const (
	DeletionDeleted  DeletionOutcome = "deleted"
	DeletionNotFound DeletionOutcome = "not_found"
	DeletionFailed   DeletionOutcome = "failed"
)

type DeletionItem struct {
	URL     string
	Key     string
	Outcome DeletionOutcome
	Reason  string
}

// DeletionBatchResult keeps items in input order.
type DeletionBatchResult struct {
	Items   []DeletionItem
	Success bool
	// Unavailable is set when the backend could not be reached and the batch was cut short.
	Unavailable bool
}

func (r DeletionBatchResult) Results() map[string]DeletionOutcome {
	out := make(map[string]DeletionOutcome, len(r.Items))
	for _, item := range r.Items {
		// a failed duplicate must not be hidden by a later success
		if prev, ok := out[item.URL]; ok && prev == DeletionFailed {
			continue
		}
		out[item.URL] = item.Outcome
	}
	return out
}

func (r DeletionBatchResult) Errors() map[string]string {
	out := make(map[string]string)
	for _, item := range r.Items {
		if item.Outcome == DeletionFailed {
			out[item.URL] = item.Reason
		}
	}
	return out
}

// Count returns how many items ended with the given outcome.
func (r DeletionBatchResult) Count(outcome DeletionOutcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}
