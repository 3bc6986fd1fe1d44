package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "buildcost"

// StartTaskCreationSpan starts a span for atomic task-with-review creation.
func StartTaskCreationSpan(ctx context.Context, projectID, taskCategoryID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "task.create",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.String("task_category.id", taskCategoryID),
		),
	)
}

// StartResolutionSpan starts a span for review configuration resolution.
func StartResolutionSpan(ctx context.Context, taskCategoryID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "review.resolve",
		trace.WithAttributes(
			attribute.String("task_category.id", taskCategoryID),
		),
	)
}

// StartStageActionSpan starts a span for a stage approval or rejection.
func StartStageActionSpan(ctx context.Context, taskID, action string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "review.stage",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("stage.action", action),
		),
	)
}
