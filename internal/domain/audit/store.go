package audit

import "context"

// Sink writes a batch of Records to the audit index. Implementations must
// treat failures as non-fatal to the caller — the request pipeline never
// blocks or fails a decision on an audit error (spec.md §4.8/§4.9).
type Sink interface {
	Write(ctx context.Context, records ...Record) error
}
