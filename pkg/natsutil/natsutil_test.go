package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type runEvent struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type capture struct {
	msgs []*nats.Msg
	err  error
}

func (c *capture) PublishMsg(m *nats.Msg) error {
	c.msgs = append(c.msgs, m)
	return c.err
}

func TestNatsHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	if got := carrier.Get("missing"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if keys := carrier.Keys(); keys != nil {
		t.Fatalf("expected nil keys, got %v", keys)
	}

	carrier.Set("traceparent", "00-abc-def-01")
	if got := carrier.Get("traceparent"); got != "00-abc-def-01" {
		t.Fatalf("expected traceparent, got %q", got)
	}
	if keys := carrier.Keys(); len(keys) != 1 {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestPublisherEncodesJSON(t *testing.T) {
	c := &capture{}
	p := NewPublisher[runEvent](c, "demandscope.runs.completed")
	if err := p.Publish(context.Background(), runEvent{ID: "micro_1", Count: 3}); err != nil {
		t.Fatal(err)
	}
	if len(c.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(c.msgs))
	}
	if c.msgs[0].Subject != p.Subject() {
		t.Fatalf("wrong subject %q", c.msgs[0].Subject)
	}
	var got runEvent
	if err := json.Unmarshal(c.msgs[0].Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "micro_1" || got.Count != 3 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestPublishInjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	c := &capture{}
	if err := Publish(ctx, c, "subj", runEvent{ID: "x"}); err != nil {
		t.Fatal(err)
	}
	if c.msgs[0].Header.Get("traceparent") == "" {
		t.Fatal("expected traceparent header")
	}
}

func TestPublishPropagatesError(t *testing.T) {
	c := &capture{err: errors.New("closed")}
	if err := Publish(context.Background(), c, "subj", runEvent{}); err == nil {
		t.Fatal("expected error")
	}
}

func startNATS(t *testing.T) *nats.Conn {
	t.Helper()
	ns, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	ns.Start()
	t.Cleanup(ns.Shutdown)
	if !ns.ReadyForConnections(2 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := Connect(ns.ClientURL(), "test", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(nc.Close)
	return nc
}

func TestSubscribeRoundTrip(t *testing.T) {
	nc := startNATS(t)

	ch := make(chan runEvent, 1)
	sub, err := Subscribe(nc, "demandscope.test", func(_ context.Context, e runEvent) {
		ch <- e
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	// Malformed payloads are dropped without reaching the handler.
	if err := nc.Publish("demandscope.test", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if err := Publish(context.Background(), nc, "demandscope.test", runEvent{ID: "collect_1", Count: 7}); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-ch:
		if e.ID != "collect_1" || e.Count != 7 {
			t.Fatalf("unexpected event %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestConnectFailure(t *testing.T) {
	if _, err := Connect("nats://127.0.0.1:1", "test", nil); err == nil {
		t.Fatal("expected connect error")
	}
}
