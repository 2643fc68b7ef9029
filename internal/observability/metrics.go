package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sample is one post-tick reading of the simulation.
// Counter fields are cumulative totals since the world was created or restored.
type Sample struct {
	TickDuration     time.Duration
	Monsters         int
	Bullets          int
	Pickups          int
	PlayerLevel      int
	PlayerHealth     int
	MonstersSpawned  uint64
	MonstersKilled   uint64
	PickupsCollected uint64
}

// SimMetrics exports simulation state as Prometheus metrics.
//
// Counters are fed from cumulative totals; SimMetrics keeps the previous
// sample and adds only the positive delta, so a restored world (whose totals
// restart at zero) never makes a counter go backwards.
type SimMetrics struct {
	tickDuration prometheus.Histogram
	monsters     prometheus.Gauge
	bullets      prometheus.Gauge
	pickups      prometheus.Gauge
	playerLevel  prometheus.Gauge
	playerHealth prometheus.Gauge
	spawned      prometheus.Counter
	killed       prometheus.Counter
	collected    prometheus.Counter

	prev Sample
}

// NewSimMetrics creates the simulation metrics and registers them on reg.
//
// Precondition: reg must be non-nil and must not already hold these metrics.
// Postcondition: Returns a SimMetrics whose collectors are registered on reg,
// or a non-nil error from registration.
func NewSimMetrics(reg prometheus.Registerer) (*SimMetrics, error) {
	m := &SimMetrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "survivor",
			Name:      "tick_duration_seconds",
			Help:      "Time spent advancing the simulation by one tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		monsters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivor",
			Name:      "monsters",
			Help:      "Live monsters in the world.",
		}),
		bullets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivor",
			Name:      "bullets",
			Help:      "Live bullets in the world.",
		}),
		pickups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivor",
			Name:      "pickups",
			Help:      "Uncollected pickups in the world.",
		}),
		playerLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivor",
			Name:      "player_level",
			Help:      "Current player level.",
		}),
		playerHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivor",
			Name:      "player_health",
			Help:      "Current player health.",
		}),
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "monsters_spawned_total",
			Help:      "Monsters spawned.",
		}),
		killed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "monsters_killed_total",
			Help:      "Monsters killed.",
		}),
		collected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "pickups_collected_total",
			Help:      "Pickups collected by the player.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.tickDuration, m.monsters, m.bullets, m.pickups,
		m.playerLevel, m.playerHealth, m.spawned, m.killed, m.collected,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one sample.
func (m *SimMetrics) Observe(s Sample) {
	m.tickDuration.Observe(s.TickDuration.Seconds())
	m.monsters.Set(float64(s.Monsters))
	m.bullets.Set(float64(s.Bullets))
	m.pickups.Set(float64(s.Pickups))
	m.playerLevel.Set(float64(s.PlayerLevel))
	m.playerHealth.Set(float64(s.PlayerHealth))

	if s.MonstersSpawned > m.prev.MonstersSpawned {
		m.spawned.Add(float64(s.MonstersSpawned - m.prev.MonstersSpawned))
	}
	if s.MonstersKilled > m.prev.MonstersKilled {
		m.killed.Add(float64(s.MonstersKilled - m.prev.MonstersKilled))
	}
	if s.PickupsCollected > m.prev.PickupsCollected {
		m.collected.Add(float64(s.PickupsCollected - m.prev.PickupsCollected))
	}
	m.prev = s
}
