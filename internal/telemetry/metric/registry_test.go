package metric

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
)

var _ redisserver.Metrics = (*Registry)(nil)

// ============================================================================
// Event counters
// ============================================================================

func TestRegistry_Commands(t *testing.T) {
	r := NewRegistry()

	r.CommandProcessed("GET", false)
	r.CommandProcessed("GET", false)
	r.CommandProcessed("SET", true)

	tests := []struct {
		command string
		failed  string
		want    float64
	}{
		{"GET", "false", 2},
		{"SET", "true", 1},
		{"SET", "false", 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues(tt.command, tt.failed))
		if got != tt.want {
			t.Errorf("commands_total{%s,%s} = %v, want %v", tt.command, tt.failed, got, tt.want)
		}
	}
}

func TestRegistry_Connections(t *testing.T) {
	r := NewRegistry()

	r.ConnectionAccepted()
	r.ConnectionAccepted()
	r.ConnectionRejected("max_clients")
	r.ProtocolError()
	r.ObserveClients(7)

	if got := testutil.ToFloat64(r.ConnectionsTotal); got != 2 {
		t.Errorf("connections_accepted_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.RejectedTotal.WithLabelValues("max_clients")); got != 1 {
		t.Errorf("connections_rejected_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ProtocolErrorsTotal); got != 1 {
		t.Errorf("protocol_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ConnectedClients); got != 7 {
		t.Errorf("connected_clients = %v, want 7", got)
	}
}

// ============================================================================
// Snapshots
// ============================================================================

func TestRegistry_ObserveStore(t *testing.T) {
	r := NewRegistry()

	r.ObserveStore(memory.Stats{
		Keys:            10,
		Expires:         3,
		EstimatedMemory: 4096,
		MemoryLimit:     8192,
		EvictionsTotal:  5,
		ExpiredTotal:    2,
	})
	r.ObserveStore(memory.Stats{
		Keys:            8,
		Expires:         1,
		EstimatedMemory: 2048,
		MemoryLimit:     8192,
		EvictionsTotal:  9,
		ExpiredTotal:    2,
	})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"keys", testutil.ToFloat64(r.Keys), 8},
		{"expires", testutil.ToFloat64(r.Expires), 1},
		{"used_memory", testutil.ToFloat64(r.UsedMemory), 2048},
		{"maxmemory", testutil.ToFloat64(r.MaxMemory), 8192},
		{"evicted", testutil.ToFloat64(r.EvictedTotal), 9},
		{"expired", testutil.ToFloat64(r.ExpiredTotal), 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestRegistry_ObserveAOF(t *testing.T) {
	r := NewRegistry()

	r.ObserveAOF(true, time.UnixMilli(1_700_000_000_500))
	if got := testutil.ToFloat64(r.AOFEnabled); got != 1 {
		t.Errorf("aof_enabled = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.AOFLastFsync); got != 1_700_000_000.5 {
		t.Errorf("aof_last_fsync = %v, want 1700000000.5", got)
	}

	r.ObserveAOF(false, time.Time{})
	if got := testutil.ToFloat64(r.AOFEnabled); got != 0 {
		t.Errorf("aof_enabled = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.AOFLastFsync); got != 1_700_000_000.5 {
		t.Errorf("zero lastFsync changed gauge to %v", got)
	}
}

// ============================================================================
// Exposition
// ============================================================================

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.CommandProcessed("PING", false)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`respkv_commands_total{command="PING",failed="false"} 1`,
		"respkv_connected_clients",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestRegistry_Independent(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.ProtocolError()

	if got := testutil.ToFloat64(b.ProtocolErrorsTotal); got != 0 {
		t.Errorf("registries share state: %v", got)
	}
	if n, err := testutil.GatherAndCount(a.Gatherer(), "respkv_protocol_errors_total"); err != nil || n != 1 {
		t.Errorf("GatherAndCount = %d, %v; want 1", n, err)
	}
}
