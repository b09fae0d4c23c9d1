package gateways

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
	"github.com/angelmondragon/soundstall-backend/pkg/metrics"
)

func TestInstrumentedRecordsCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: "info", Output: &buf})

	adapter := Instrument(&stubGateway{name: enums.PaymentGatewayStripe, configured: true}, metrics.NewGatewayMetrics(reg), logg)

	res, err := adapter.Initiate(context.Background(), InitiateRequest{Amount: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if res.ReferenceID != "ref" {
		t.Fatalf("unexpected reference %q", res.ReferenceID)
	}
	if _, err := adapter.Finalize(context.Background(), FinalizeRequest{ReferenceID: "ref"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	got, err := testutil.GatherAndCount(reg, "payment_gateway_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 request series, got %d", got)
	}
	out := buf.String()
	for _, want := range []string{"gateway.initiate", "gateway.finalize", `"gateway":"stripe"`, `"reference_id":"ref"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %s, got %s", want, out)
		}
	}
}

func TestInstrumentedKeepsIdentity(t *testing.T) {
	adapter := Instrument(&stubGateway{name: enums.PaymentGatewayPayPal}, nil, nil)
	if adapter.Name() != enums.PaymentGatewayPayPal || adapter.Configured() {
		t.Fatalf("decorator must delegate identity, got %s configured=%v", adapter.Name(), adapter.Configured())
	}
	if _, err := adapter.Finalize(context.Background(), FinalizeRequest{ReferenceID: "ref"}); err != nil {
		t.Fatalf("finalize without metrics or logger: %v", err)
	}
}
