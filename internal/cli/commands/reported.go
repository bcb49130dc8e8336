package commands

import "errors"

// ReportedError marks an error the command has already printed to its
// output. The caller still exits non-zero but should not print it again.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// IsReported reports whether err, or any error it wraps, was already printed
func IsReported(err error) bool {
	var reported *ReportedError
	return errors.As(err, &reported)
}
