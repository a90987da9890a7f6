package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	uploadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resume_uploads_total",
		Help: "Total resumes uploaded",
	})
	uploadFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resume_upload_failures_total",
		Help: "Total uploads failed at a backend",
	})
	orphanedBlobsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resume_orphaned_blobs_total",
		Help: "Total blobs written without a metadata record",
	})
	downloadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resume_downloads_total",
		Help: "Total resume downloads started",
	})
	rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})
	uploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "resume_upload_bytes",
		Help: "Accepted upload size in bytes",
		// 64KiB .. 10MiB
		Buckets: []float64{65536, 262144, 1048576, 2097152, 5242880, 10485760},
	})
)

func init() {
	registry.MustRegister(
		uploadsTotal,
		uploadFailuresTotal,
		orphanedBlobsTotal,
		downloadsTotal,
		rateLimitedTotal,
		uploadBytes,
	)
}

// IncUploads counts a completed upload.
func IncUploads() {
	uploadsTotal.Inc()
}

// IncUploadFailures counts an upload that failed after validation.
func IncUploadFailures() {
	uploadFailuresTotal.Inc()
}

// IncOrphanedBlobs counts blobs left without a metadata record.
func IncOrphanedBlobs() {
	orphanedBlobsTotal.Inc()
}

// IncDownloads counts a download whose stream was opened.
func IncDownloads() {
	downloadsTotal.Inc()
}

// IncRateLimited counts a request rejected by the rate limiter.
func IncRateLimited() {
	rateLimitedTotal.Inc()
}

// ObserveUploadBytes records the size of an accepted upload.
func ObserveUploadBytes(size int64) {
	if size < 0 {
		size = 0
	}
	uploadBytes.Observe(float64(size))
}

// Registry returns the private registry holding the service metrics.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes the registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
