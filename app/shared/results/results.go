// Package results provides the success/failure envelope returned by
// service operations. Business failures travel as failure payloads with a
// nil error; Go errors are reserved for infrastructure problems the
// caller may retry.
package results

// OperationResult holds either a success payload or a failure payload.
// Both nil means the operation had nothing to report (for example an
// idempotent no-op).
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}

// Successf wraps a success payload.
func Successf[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// Failuref wraps a failure payload.
func Failuref[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}
