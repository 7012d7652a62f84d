package service

type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindStoreFailure      ErrorKind = "store_failure"
	KindValidation        ErrorKind = "validation"
)

// Result is the outcome of a lifecycle operation. Failures carry a kind and
// a message meant for the operator.
type Result struct {
	Success bool      `json:"success"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Error   string    `json:"error,omitempty"`
}

func succeed() Result {
	return Result{Success: true}
}

func fail(kind ErrorKind, msg string) Result {
	return Result{Kind: kind, Error: msg}
}
