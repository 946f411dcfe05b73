package reportstore

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

type storeMetrics struct {
	SaveDuration    *metrics.Histogram
	GetByIDDuration *metrics.Histogram
	RecentDuration  *metrics.Histogram
	SaveErrors      *metrics.Counter
}

func newStoreMetrics(prefix string) *storeMetrics {
	name := func(n string) string {
		return fmt.Sprintf(`hazyerr_report_store_%s{prefix=%q}`, n, prefix)
	}

	return &storeMetrics{
		SaveDuration:    metrics.GetOrCreateHistogram(name("save_duration")),
		GetByIDDuration: metrics.GetOrCreateHistogram(name("get_by_id_duration")),
		RecentDuration:  metrics.GetOrCreateHistogram(name("recent_duration")),
		SaveErrors:      metrics.GetOrCreateCounter(name("save_errors_total")),
	}
}
