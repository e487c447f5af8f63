// Package batch holds per-record outcomes of bulk corpus imports.
package batch

// ItemStatus is the processing outcome of a single imported record.
type ItemStatus string

// Record status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of importing one record. Index is the record's
// position in the request, since a rejected record may carry no usable ID.
type Result struct {
	index  int
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful record result.
func NewOK(index int, id string) Result {
	return Result{index: index, id: id, status: StatusOK}
}

// NewError creates a rejected record result.
func NewError(index int, id string, err error) Result {
	return Result{index: index, id: id, status: StatusError, err: err}
}

// Index returns the record position in the request.
func (r Result) Index() int { return r.index }

// ID returns the item identifier, possibly empty for rejected records.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// CountFailed returns the number of rejected records.
func CountFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.status == StatusError {
			n++
		}
	}
	return n
}
