// Package outcome carries the three-tier result convention shared by the
// voice tool operations.
package outcome

// Status is the tier of an operation result.
type Status string

const (
	// StatusSuccess means the operation did what was asked.
	StatusSuccess Status = "Success"
	// StatusFailed is an expected, caller-facing non-success such as "no such patient".
	StatusFailed Status = "Failed"
	// StatusError is an unexpected fault. The message is returned but nothing else leaks.
	StatusError Status = "Error"
)

// Result is embedded in every tool response so the JSON always carries
// "status" and, when present, "message".
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

func Success(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

func Failed(message string) Result {
	return Result{Status: StatusFailed, Message: message}
}

// Error converts an unexpected error into an Error result.
func Error(err error) Result {
	if err == nil {
		return Result{Status: StatusError, Message: "unknown error"}
	}
	return Result{Status: StatusError, Message: err.Error()}
}

func (r Result) IsError() bool { return r.Status == StatusError }

// Outcome returns the embedded result so wrappers can be inspected generically.
func (r Result) Outcome() Result { return r }
