package observability

import (
	"context"

	servertiming "github.com/mitchellh/go-server-timing"
)

// Timing is a running Server-Timing metric. The zero value is a no-op.
type Timing struct {
	metric *servertiming.Metric
}

func (t *Timing) Stop() {
	if t != nil && t.metric != nil {
		t.metric.Stop()
	}
}

// StartTiming starts a metric on the request's Server-Timing header, if ctx
// carries one.
func StartTiming(ctx context.Context, name, desc string) *Timing {
	header := servertiming.FromContext(ctx)
	if header == nil {
		return &Timing{}
	}
	m := header.NewMetric(name)
	if desc != "" {
		m = m.WithDesc(desc)
	}
	return &Timing{metric: m.Start()}
}
