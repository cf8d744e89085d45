package mcslices

import (
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"
)

// Metrics holds the counters updated while slicing. A nil *Metrics is valid
// everywhere it is accepted.
type Metrics struct {
	registry *prometheus.Registry

	ChunksScanned prometheus.Counter
	LayersWritten prometheus.Counter
	PixelsPainted prometheus.Counter
	Batches       prometheus.Counter
	BatchSize     prometheus.Gauge
	Resident      prometheus.Gauge
	PeakResident  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ChunksScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcslices",
			Name:      "chunks_scanned_total",
			Help:      "Chunks read from the world, counted once per pass.",
		}),
		LayersWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcslices",
			Name:      "layers_written_total",
			Help:      "Layer images written to disk.",
		}),
		PixelsPainted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcslices",
			Name:      "pixels_painted_total",
			Help:      "Pixels painted from chunk cells.",
		}),
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcslices",
			Name:      "batches_total",
			Help:      "Rasterization passes over the world.",
		}),
		BatchSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mcslices",
			Name:      "batch_size",
			Help:      "Layers rendered per pass.",
		}),
		Resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mcslices",
			Name:      "resident_bytes",
			Help:      "Resident memory at the last sample.",
		}),
		PeakResident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mcslices",
			Name:      "peak_resident_bytes",
			Help:      "Highest resident memory sampled so far.",
		}),
	}

	m.registry.MustRegister(
		m.ChunksScanned,
		m.LayersWritten,
		m.PixelsPainted,
		m.Batches,
		m.BatchSize,
		m.Resident,
		m.PeakResident,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MemorySampler tracks the resident memory of the current process.
type MemorySampler struct {
	sync.Mutex

	proc *process.Process
	peak uint64
}

func NewMemorySampler() (*MemorySampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &MemorySampler{proc: proc}, nil
}

// Sample reads the current resident set size and records it in m, if given.
func (s *MemorySampler) Sample(m *Metrics) (uint64, error) {
	info, err := s.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}

	s.Lock()
	if info.RSS > s.peak {
		s.peak = info.RSS
	}
	peak := s.peak
	s.Unlock()

	if m != nil {
		m.Resident.Set(float64(info.RSS))
		m.PeakResident.Set(float64(peak))
	}
	return info.RSS, nil
}

// Peak is the highest resident set size sampled so far.
func (s *MemorySampler) Peak() uint64 {
	s.Lock()
	defer s.Unlock()
	return s.peak
}
