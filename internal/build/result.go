// Package build defines the value a build-step plugin must return.
package build

// Result is the outcome of a build step. A failed Result is a legitimate
// response, not an engine error: the caller inspects it and decides.
type Result struct {
	// ImageID identifies the built image on success.
	ImageID string
	// Logs holds the raw output lines of the underlying build.
	Logs []string
	// FailReason is set when the build did not produce an image.
	FailReason string
}

// NewResult returns a successful build result.
func NewResult(imageID string, logs []string) *Result {
	return &Result{ImageID: imageID, Logs: logs}
}

// NewFailedResult returns a failed build result carrying the reason.
func NewFailedResult(reason string, logs []string) *Result {
	return &Result{FailReason: reason, Logs: logs}
}

// IsFailed reports whether the build step failed.
func (r *Result) IsFailed() bool {
	return r.FailReason != ""
}
