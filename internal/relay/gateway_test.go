package relay

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/locus-venue/internal/observability/metrics"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

type stubRelay struct {
	result Result
	panics bool
	calls  int
	sawCtx context.Context
}

func (s *stubRelay) Name() string { return "stub" }

func (s *stubRelay) Deliver(ctx context.Context, sub Submission) Result {
	s.calls++
	s.sawCtx = ctx
	if s.panics {
		panic("boom")
	}
	return s.result
}

func TestGatewayPassesResultThrough(t *testing.T) {
	stub := &stubRelay{result: delivered(200)}
	g := NewGateway(stub, "inquiry", logging.Discard())

	res := g.Submit(context.Background(), bookingSubmission())
	assert.True(t, res.OK())
	assert.Equal(t, 1, stub.calls)
}

func TestGatewayRecoversPanics(t *testing.T) {
	g := NewGateway(&stubRelay{panics: true}, "booking", logging.Discard())

	var res Result
	require.NotPanics(t, func() { res = g.Submit(context.Background(), bookingSubmission()) })
	assert.Equal(t, Transport, res.Kind)
	assert.Contains(t, res.Err.Error(), "boom")
}

func TestGatewayWithoutRelay(t *testing.T) {
	res := NewGateway(nil, "booking", logging.Discard()).Submit(context.Background(), Submission{})
	assert.Equal(t, Misconfigured, res.Kind)
}

func TestGatewayAppliesTimeout(t *testing.T) {
	stub := &stubRelay{result: delivered(200)}
	g := NewGateway(stub, "booking", logging.Discard(), WithTimeout(time.Second))

	g.Submit(context.Background(), Submission{})
	_, ok := stub.sawCtx.Deadline()
	assert.True(t, ok)
}

func TestGatewayRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewFunnelMetrics(reg)
	g := NewGateway(&stubRelay{result: rejected(500)}, "booking", logging.Discard(), WithMetrics(m))

	g.Submit(context.Background(), Submission{})

	families, err := reg.Gather()
	require.NoError(t, err)
	var family *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "locus_relay_submissions_total" {
			family = f
		}
	}
	require.NotNil(t, family)
	require.Len(t, family.GetMetric(), 1)

	labels := map[string]string{}
	for _, lp := range family.GetMetric()[0].GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	assert.Equal(t, "booking", labels["channel"])
	assert.Equal(t, "rejected", labels["outcome"])
}
