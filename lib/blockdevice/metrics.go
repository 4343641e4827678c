package blockdevice

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metrics instruments for controller operations. A nil
// *Metrics disables recording, so the library works without a meter.
type Metrics struct {
	opDuration      metric.Float64Histogram
	awaitIterations metric.Int64Histogram
	wrongCluster    metric.Int64Counter
}

// NewMetrics creates and registers the controller metrics, including an
// observable gauge backed by a live volume listing.
func NewMetrics(meter metric.Meter, c *Controller) (*Metrics, error) {
	opDuration, err := meter.Float64Histogram(
		"do_blockdevice_operation_duration_seconds",
		metric.WithDescription("Time spent in volume lifecycle operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	awaitIterations, err := meter.Int64Histogram(
		"do_blockdevice_await_iterations",
		metric.WithDescription("Provider polls needed for an action to settle"),
	)
	if err != nil {
		return nil, err
	}

	wrongCluster, err := meter.Int64Counter(
		"do_blockdevice_wrong_cluster_volumes_total",
		metric.WithDescription("Sightings of volumes following our naming convention but stamped by another cluster"),
	)
	if err != nil {
		return nil, err
	}

	ownedVolumes, err := meter.Int64ObservableGauge(
		"do_blockdevice_owned_volumes",
		metric.WithDescription("Volumes owned by this cluster"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			vols, err := c.ListVolumes(ctx)
			if err != nil {
				return nil
			}
			o.ObserveInt64(ownedVolumes, int64(len(vols)))
			return nil
		},
		ownedVolumes,
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		opDuration:      opDuration,
		awaitIterations: awaitIterations,
		wrongCluster:    wrongCluster,
	}, nil
}

// SetMetrics attaches metrics instruments to the controller.
func (c *Controller) SetMetrics(m *Metrics) {
	c.metrics = m
}

func (c *Controller) recordOperation(ctx context.Context, op string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.opDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("status", status),
		))
}

func (c *Controller) recordAwait(ctx context.Context, actionType string, iterations int, status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.awaitIterations.Record(ctx, int64(iterations),
		metric.WithAttributes(
			attribute.String("action_type", actionType),
			attribute.String("action_status", status),
		))
}

func (c *Controller) recordWrongCluster(ctx context.Context, count int) {
	if c.metrics == nil || count == 0 {
		return
	}
	c.metrics.wrongCluster.Add(ctx, int64(count))
}
