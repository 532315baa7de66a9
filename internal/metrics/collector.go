package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MiguelSairitupa/voznota/internal/store"
)

// scrapeTimeout bounds the database lookup done on each /metrics scrape.
const scrapeTimeout = 5 * time.Second

// StoreStats provides the metrics collector access to live database totals.
type StoreStats interface {
	Stats(ctx context.Context) (store.DatabaseStats, error)
}

// Collector implements prometheus.Collector to read live database totals
// at scrape time.
type Collector struct {
	src StoreStats

	// Descriptors for scrape-time gauges.
	storedTranscriptions *prometheus.Desc
	databaseDiskBytes    *prometheus.Desc
}

// NewCollector creates a collector that reads live totals at scrape time.
// src may be nil (gauges will report 0).
func NewCollector(src StoreStats) *Collector {
	return &Collector{
		src: src,
		storedTranscriptions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "stored_transcriptions"),
			"Current number of documents in the transcription database.",
			nil, nil,
		),
		databaseDiskBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "database", "disk_bytes"),
			"On-disk size of the transcription database.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.storedTranscriptions
	ch <- c.databaseDiskBytes
}

// Collect queries the store for current totals. When the store is
// unreachable the gauges are omitted from that scrape.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.src == nil {
		ch <- prometheus.MustNewConstMetric(c.storedTranscriptions, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.databaseDiskBytes, prometheus.GaugeValue, 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	stats, err := c.src.Stats(ctx)
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.storedTranscriptions, prometheus.GaugeValue, float64(stats.DocCount))
	ch <- prometheus.MustNewConstMetric(c.databaseDiskBytes, prometheus.GaugeValue, float64(stats.DiskBytes))
}
