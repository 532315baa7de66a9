package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MiguelSairitupa/voznota/internal/store"
)

type fakeStats struct {
	stats store.DatabaseStats
	err   error
}

func (f *fakeStats) Stats(ctx context.Context) (store.DatabaseStats, error) {
	return f.stats, f.err
}

// gatherValues registers c on a fresh registry and returns the gauge
// values it produced, keyed by metric name.
func gatherValues(t *testing.T, c *Collector) map[string]float64 {
	t.Helper()
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register collector: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			values[mf.GetName()] = m.GetGauge().GetValue()
		}
	}
	return values
}

func TestCollector(t *testing.T) {
	t.Run("reports_live_totals", func(t *testing.T) {
		c := NewCollector(&fakeStats{stats: store.DatabaseStats{DocCount: 42, DiskBytes: 131072}})
		values := gatherValues(t, c)
		if got := values["voznota_stored_transcriptions"]; got != 42 {
			t.Errorf("stored_transcriptions = %v, want 42", got)
		}
		if got := values["voznota_database_disk_bytes"]; got != 131072 {
			t.Errorf("database_disk_bytes = %v, want 131072", got)
		}
	})

	t.Run("nil_source_reports_zero", func(t *testing.T) {
		values := gatherValues(t, NewCollector(nil))
		if got := values["voznota_stored_transcriptions"]; got != 0 {
			t.Errorf("stored_transcriptions = %v, want 0", got)
		}
		if got := values["voznota_database_disk_bytes"]; got != 0 {
			t.Errorf("database_disk_bytes = %v, want 0", got)
		}
	})

	t.Run("store_error_omits_gauges", func(t *testing.T) {
		c := NewCollector(&fakeStats{err: errors.New("cloudant unreachable")})
		values := gatherValues(t, c)
		if _, ok := values["voznota_stored_transcriptions"]; ok {
			t.Error("expected stored_transcriptions to be absent when the store errors")
		}
	})
}
