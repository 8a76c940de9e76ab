package goalpool

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/branched-services/go-goalpool/internal/chaintest"
)

func TestDefaultDispatcher(t *testing.T) {
	d := NewDispatcher(NewGateway(testDescriptor(t), chaintest.NewBackend()), FunctionNames{})

	if d.credential != nil {
		t.Error("Expected no credential by default")
	}
	if d.tracker != nil {
		t.Error("Expected no tracker by default")
	}
	if d.reporter == nil || d.logger == nil {
		t.Error("Expected reporter and logger defaults")
	}
	if d.functions != DefaultFunctionNames() {
		t.Errorf("Expected default function names, got %+v", d.functions)
	}
}

func TestDispatcherOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	reporter := NewReporter(&buf, &buf, "")
	cred := testCredential(t)
	tracker := NewTracker(chaintest.NewBackend())

	d := NewDispatcher(NewGateway(testDescriptor(t), chaintest.NewBackend()), FunctionNames{},
		WithCredential(cred),
		WithTracker(tracker, 90*time.Second),
		WithReporter(reporter),
		WithDispatcherLogger(logger),
	)

	if d.credential != cred {
		t.Error("Credential not applied")
	}
	if d.tracker != tracker || d.confirmTimeout != 90*time.Second {
		t.Error("Tracker not applied")
	}
	if d.reporter != reporter {
		t.Error("Reporter not applied")
	}
	if d.logger != logger {
		t.Error("Logger not applied")
	}

	t.Run("nil reporter and logger keep defaults", func(t *testing.T) {
		d := NewDispatcher(NewGateway(testDescriptor(t), chaintest.NewBackend()), FunctionNames{},
			WithReporter(nil),
			WithDispatcherLogger(nil),
		)
		if d.reporter == nil || d.logger == nil {
			t.Error("Expected defaults to be kept")
		}
	})
}

func TestGatewayLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g := NewGateway(testDescriptor(t), chaintest.NewBackend(), WithGatewayLogger(logger))
	if g.logger != logger {
		t.Error("Logger not applied")
	}
	if NewGateway(testDescriptor(t), chaintest.NewBackend(), WithGatewayLogger(nil)).logger == nil {
		t.Error("Nil logger should keep the default")
	}
}
