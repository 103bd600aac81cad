package transfer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Uploads          *prometheus.CounterVec
	UploadedBytes    prometheus.Counter
	Downloads        *prometheus.CounterVec
	FilesFetched     prometheus.Counter
	FilesMissing     prometheus.Counter
	DownloadDuration prometheus.Histogram
}

// NewMetrics registers the transfer collectors with reg. A nil reg keeps
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transfers",
			Name:      "uploads_total",
			Help:      "Uploads by outcome",
		}, []string{"outcome"}),
		UploadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "transfers",
			Name:      "uploaded_bytes_total",
			Help:      "Bytes accepted by successful uploads",
		}),
		Downloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transfers",
			Name:      "downloads_total",
			Help:      "Bundled downloads by outcome",
		}, []string{"outcome"}),
		FilesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "transfers",
			Name:      "download_files_fetched_total",
			Help:      "Files added to download archives",
		}),
		FilesMissing: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "transfers",
			Name:      "download_files_missing_total",
			Help:      "Files that could not be fetched for a download",
		}),
		DownloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "transfers",
			Name:      "download_duration_seconds",
			Help:      "Time spent fetching and bundling a download",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}
