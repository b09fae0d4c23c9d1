package gateways

import (
	"context"
	"time"

	"github.com/angelmondragon/soundstall-backend/pkg/logger"
	"github.com/angelmondragon/soundstall-backend/pkg/metrics"
)

// Instrumented decorates a Gateway with call metrics and structured logs.
type Instrumented struct {
	Gateway
	metrics *metrics.GatewayMetrics
	logg    *logger.Logger
}

// Instrument wraps adapter. Nil metrics or logger disable that concern.
func Instrument(adapter Gateway, m *metrics.GatewayMetrics, logg *logger.Logger) *Instrumented {
	return &Instrumented{Gateway: adapter, metrics: m, logg: logg}
}

func (i *Instrumented) Initiate(ctx context.Context, req InitiateRequest) (*PendingResult, error) {
	start := time.Now()
	res, err := i.Gateway.Initiate(ctx, req)
	i.metrics.Observe(i.Name().String(), "initiate", time.Since(start), err)

	if i.logg != nil {
		logCtx := i.logg.WithGateway(ctx, i.Name().String())
		if err != nil {
			i.logg.Error(logCtx, "gateway.initiate.failed", err)
		} else {
			i.logg.Info(i.logg.WithReferenceID(logCtx, res.ReferenceID), "gateway.initiate")
		}
	}
	return res, err
}

func (i *Instrumented) Finalize(ctx context.Context, req FinalizeRequest) (*SettledResult, error) {
	start := time.Now()
	res, err := i.Gateway.Finalize(ctx, req)
	i.metrics.Observe(i.Name().String(), "finalize", time.Since(start), err)

	if i.logg != nil {
		logCtx := i.logg.WithReferenceID(i.logg.WithGateway(ctx, i.Name().String()), req.ReferenceID)
		if err != nil {
			i.logg.Error(logCtx, "gateway.finalize.failed", err)
		} else {
			i.logg.Info(i.logg.WithField(logCtx, "status", res.Status), "gateway.finalize")
		}
	}
	return res, err
}
