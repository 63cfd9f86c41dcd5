package prometheus

import (
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blt"

var (
	// BeaconsTotal counts ingestion attempts by entry point and outcome.
	BeaconsTotal = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "beacons_total",
		Help:      "Beacon ingestion attempts by entry point and outcome.",
	}, []string{"entry", "outcome"})

	// StashDuration observes the synchronous part of an ingestion attempt.
	StashDuration = promauto.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stash_duration_seconds",
		Help:      "Time spent validating, resolving identity and scheduling work.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"entry"})

	TasksTotal = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_total",
		Help:      "Background tasks processed by kind and outcome.",
	}, []string{"kind", "outcome"})

	IdentitiesCreated = promauto.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "identities_created_total",
		Help:      "Universal clients minted by the identity resolver.",
	})

	IdentityCacheLookups = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "identity_cache_lookups_total",
		Help:      "Identity cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	IdentityIntegrityWarnings = promauto.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "identity_integrity_warnings_total",
		Help:      "Lookups that matched more than one live universal client.",
	})

	DuplicateIdentities = promauto.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "duplicate_external_ids",
		Help:      "External ids currently held by more than one live universal client.",
	})

	AttributeMismatches = promauto.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "attribute_count_mismatches_total",
		Help:      "Events whose attribute id and value lists had different lengths.",
	})

	FingerprintSightings = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "fingerprint_sightings_total",
		Help:      "Fingerprints observed by this process, split into first_seen and returning.",
	}, []string{"kind"})
)
