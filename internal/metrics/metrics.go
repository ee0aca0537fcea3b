// file: internal/metrics/metrics.go
// version: 1.0.0
// guid: 3c1d9a4e-7f25-4b80-94e6-2a5d8c0b1f37

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	enrichmentLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sound_circle",
		Name:      "enrichment_lookups_total",
		Help:      "Total number of metadata provider lookups by outcome",
	}, []string{"outcome"})
	trackSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sound_circle",
		Name:      "track_submissions_total",
		Help:      "Total number of track submissions by result",
	}, []string{"result"})
	playlistMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sound_circle",
		Name:      "playlist_mutations_total",
		Help:      "Total number of playlist mutations by operation",
	}, []string{"op"})

	tracksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sound_circle",
		Name:      "tracks_total",
		Help:      "Current total number of tracks in the catalog",
	})
	usersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sound_circle",
		Name:      "users_total",
		Help:      "Current total number of registered users",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(enrichmentLookups, trackSubmissions, playlistMutations,
			tracksGauge, usersGauge)
	})
}

// Counters
func IncEnrichmentLookup(outcome string) { enrichmentLookups.WithLabelValues(outcome).Inc() }
func IncTrackSubmission(result string)   { trackSubmissions.WithLabelValues(result).Inc() }
func IncPlaylistMutation(op string)      { playlistMutations.WithLabelValues(op).Inc() }

// Gauges
func SetTracks(n int) { tracksGauge.Set(float64(n)) }
func SetUsers(n int)  { usersGauge.Set(float64(n)) }
