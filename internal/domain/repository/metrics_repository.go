package repository

import "github.com/diillson/ads-budget-realloc-go/internal/domain/entity"

// MetricsRecorder recebe os eventos de cada ação da sessão.
type MetricsRecorder interface {
	ObserveFetch(platform entity.Platform, entities int, err error)
	ObserveRecompute(platform entity.Platform, accepted bool)
	ObserveCommit(platform entity.Platform, succeeded bool)
}
