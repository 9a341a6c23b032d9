package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

func TestCheckAllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("Status = %v, want %v", report.Status, Healthy)
	}
	if report.Checks["database"] != CheckOK {
		t.Errorf("database check = %v, want ok", report.Checks["database"])
	}
	if report.Checks["cache"] != CheckOK {
		t.Errorf("cache check = %v, want ok", report.Checks["cache"])
	}
}

func TestCheckDatabaseDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("refused")}, &mockPinger{})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("Status = %v, want %v", report.Status, Degraded)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("database check = %v, want error", report.Checks["database"])
	}
}

func TestCheckCacheDown(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("refused")})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("Status = %v, want %v", report.Status, Degraded)
	}
}

func TestCheckNilCacheSkipped(t *testing.T) {
	svc := New(&mockPinger{}, nil)
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("Status = %v, want %v", report.Status, Healthy)
	}
	if _, ok := report.Checks["cache"]; ok {
		t.Error("cache check should be absent when no cache is configured")
	}
}
