package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "buildcost"

// Metrics holds all buildcost metric instruments.
type Metrics struct {
	TasksCreated        metric.Int64Counter
	TasksSoftDeleted    metric.Int64Counter
	TasksRestored       metric.Int64Counter
	ReviewsMaterialized metric.Int64Counter
	StagesApproved      metric.Int64Counter
	StagesRejected      metric.Int64Counter
	ResolutionDuration  metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TasksCreated, err = meter.Int64Counter("buildcost.tasks.created",
		metric.WithDescription("Number of tasks created"))
	if err != nil {
		return nil, err
	}

	m.TasksSoftDeleted, err = meter.Int64Counter("buildcost.tasks.soft_deleted",
		metric.WithDescription("Number of tasks soft-deleted"))
	if err != nil {
		return nil, err
	}

	m.TasksRestored, err = meter.Int64Counter("buildcost.tasks.restored",
		metric.WithDescription("Number of tasks restored"))
	if err != nil {
		return nil, err
	}

	m.ReviewsMaterialized, err = meter.Int64Counter("buildcost.reviews.materialized",
		metric.WithDescription("Number of task reviews materialized from configurations"))
	if err != nil {
		return nil, err
	}

	m.StagesApproved, err = meter.Int64Counter("buildcost.stages.approved",
		metric.WithDescription("Number of review stages approved"))
	if err != nil {
		return nil, err
	}

	m.StagesRejected, err = meter.Int64Counter("buildcost.stages.rejected",
		metric.WithDescription("Number of review stages rejected"))
	if err != nil {
		return nil, err
	}

	m.ResolutionDuration, err = meter.Float64Histogram("buildcost.resolution.duration_seconds",
		metric.WithDescription("Review configuration resolution duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
