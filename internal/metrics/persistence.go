package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas de la capa de persistencia (unit of work + identity map). Viven en
// un paquete propio para que persistence y http no se importen entre sí.

var (
	UoWScopes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uow_scopes_total",
		Help: "Scopes de unit of work cerrados, por resultado",
	}, []string{"outcome"}) // committed|rolled_back|flush_failed|commit_failed|cancelled|panic|begin_failed

	UoWFlushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "uow_flush_duration_seconds",
		Help:    "Duración del flush de escrituras pendientes",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	UoWFlushedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uow_flushed_records_total",
		Help: "Registros materializados durante flush, por operación",
	}, []string{"op"}) // insert|update

	IdentityMapLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_map_lookups_total",
		Help: "Búsquedas en el identity map, por resultado",
	}, []string{"result"}) // hit|miss
)

// Outcomes de un scope de unit of work.
const (
	OutcomeCommitted    = "committed"
	OutcomeRolledBack   = "rolled_back"
	OutcomeFlushFailed  = "flush_failed"
	OutcomeCommitFailed = "commit_failed"
	OutcomeCancelled    = "cancelled"
	OutcomePanic        = "panic"
	OutcomeBeginFailed  = "begin_failed"
)

// RegisterPersistence registers the persistence metrics on the given registry (or default if nil).
func RegisterPersistence(reg prometheus.Registerer) error {
	return register(reg, UoWScopes, UoWFlushDuration, UoWFlushedRecords, IdentityMapLookups)
}

func register(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
