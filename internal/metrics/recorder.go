// Package metrics defines observability hooks for build, deploy, and serve.
package metrics

import "time"

// UploadResult enumerates deploy upload outcomes for counters.
type UploadResult string

const (
	UploadUploaded UploadResult = "uploaded"
	UploadSkipped  UploadResult = "skipped"
	UploadFailed   UploadResult = "failed"
)

// Recorder defines observability hooks for build and deploy metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. The
// NoopRecorder is used when metrics are not configured.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	AddPagesRendered(n int)
	AddAssetsCopied(n int)
	IncUploadResult(result UploadResult)
	ObserveDeployDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)  {}
func (NoopRecorder) AddPagesRendered(int)                {}
func (NoopRecorder) AddAssetsCopied(int)                 {}
func (NoopRecorder) IncUploadResult(UploadResult)        {}
func (NoopRecorder) ObserveDeployDuration(time.Duration) {}
