package models

import "errors"

var (
	// ErrAssetNotFound is returned when an operation targets an unseeded symbol.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrSymbolBusy is returned when the per-symbol update lock could not be
	// acquired within the retry budget.
	ErrSymbolBusy = errors.New("symbol update already in progress")
)

// TranscriptionError means the speech provider rejected both feature-set
// attempts or was unreachable. It is surfaced to the caller and not retried.
type TranscriptionError struct {
	Message string
}

func (e *TranscriptionError) Error() string {
	return "transcription failed: " + e.Message
}

// ClassificationError means the language-model provider was unreachable or no
// credentials were configured with degraded mode disabled.
type ClassificationError struct {
	Message string
	Err     error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return "classification failed: " + e.Message + ": " + e.Err.Error()
	}
	return "classification failed: " + e.Message
}

func (e *ClassificationError) Unwrap() error { return e.Err }
