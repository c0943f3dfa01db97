package http

import (
	"net/http"
	"testing"
	"time"
)

func TestMonitorStartStop(t *testing.T) {
	t.Parallel()
	ts := newTestServices()

	rec := do(t, ts.router, http.MethodPost, "/start", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"status\":\"started\"}\n" {
		t.Fatalf("unexpected start response %d %q", rec.Code, rec.Body.String())
	}
	rec = do(t, ts.router, http.MethodPost, "/stop", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"status\":\"stopped\"}\n" {
		t.Fatalf("unexpected stop response %d %q", rec.Code, rec.Body.String())
	}
	if len(ts.monitor.calls) != 2 || ts.monitor.calls[0] != "start" || ts.monitor.calls[1] != "stop" {
		t.Fatalf("unexpected calls %v", ts.monitor.calls)
	}
}

func TestMonitorConfig_EchoesRequest(t *testing.T) {
	t.Parallel()
	ts := newTestServices()

	rec := do(t, ts.router, http.MethodPost, "/config", `{"timeout":4.5,"ip":"10.1.1.1","simulation":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp configResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "updated" || resp.Config.IP != "10.1.1.1" || !resp.Config.Simulation || resp.Config.Timeout != 4.5 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if ts.monitor.cfg.Timeout != 4500*time.Millisecond || ts.monitor.cfg.IP != "10.1.1.1" {
		t.Fatalf("unexpected config: %+v", ts.monitor.cfg)
	}
}

func TestMonitorConfig_RequiresTimeout(t *testing.T) {
	t.Parallel()
	ts := newTestServices()

	rec := do(t, ts.router, http.MethodPost, "/config", `{"ip":"10.1.1.1"}`)
	expectError(t, rec, http.StatusBadRequest, codeValidation)
	if len(ts.monitor.calls) != 0 {
		t.Fatalf("expected no configure call, got %v", ts.monitor.calls)
	}
}
