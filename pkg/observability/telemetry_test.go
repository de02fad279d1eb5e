package observability

import (
	"context"
	"testing"
	"time"
)

func TestDisabledProviderIsNoOp(t *testing.T) {
	tp, err := NewTelemetryProvider(nil)
	if err != nil {
		t.Fatalf("NewTelemetryProvider: %v", err)
	}

	ctx, span := tp.TraceDispatch(context.Background(), "msg_1", 2)
	if ctx == nil || span == nil {
		t.Fatal("expected usable context and span")
	}
	span.End()

	_, span = tp.TraceChannelSend(ctx, "msg_1", "f451_slack")
	tp.RecordMessageSent(ctx, "f451_slack", time.Second)
	tp.RecordMessageFailed(ctx, "f451_slack", time.Second, "COMMUNICATIONS_ERROR")
	tp.SetSpanSuccess(span)
	span.End()

	if err := tp.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNilProviderIsSafe(t *testing.T) {
	var tp *TelemetryProvider

	_, span := tp.TraceDispatch(context.Background(), "msg_1", 1)
	tp.RecordMessageSent(context.Background(), "f451_mailgun", time.Second)
	tp.SetSpanError(span, nil)
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
