package monitoring

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/snovvcrash/aes256m-cracker/crackcfg"
)

const namespace = "aesmcrack"

var (
	started sync.Once

	// Registry holds every collector of this process.
	Registry = prometheus.NewRegistry()

	blocksRecovered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_recovered_total",
		Help:      "Plaintext blocks written by the cracker.",
	})

	runSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recover_duration_seconds",
		Help:      "Wall time of a full recovery run.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})
)

func init() {
	Registry.MustRegister(
		blocksRecovered, runSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ExportPrometheusMetrics launches the Prometheus exporter on the configured
// address. Only the first call has an effect.
func ExportPrometheusMetrics(cfg crackcfg.Prometheus) error {
	if !cfg.Enabled() {
		return errors.New("prometheus exporter is not configured")
	}

	var err error
	started.Do(func() {
		var lis net.Listener
		lis, err = net.Listen("tcp", cfg.Listen)
		if err != nil {
			return
		}

		log.Infof("Prometheus exporter started on %v/metrics",
			lis.Addr())

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(
			Registry, promhttp.HandlerOpts{},
		))

		srv := &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			err := srv.Serve(lis)
			if !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Prometheus exporter stopped: %v", err)
			}
		}()
	})

	return err
}

// AddRecoveredBlocks counts plaintext blocks written by a run.
func AddRecoveredBlocks(n uint64) {
	blocksRecovered.Add(float64(n))
}

// ObserveRun records the duration of a recovery run.
func ObserveRun(d time.Duration) {
	runSeconds.Observe(d.Seconds())
}
