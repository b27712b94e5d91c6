package monitoring

import "testing"

func TestCheckHealthAggregation(t *testing.T) {
	hc := NewHealthChecker("voicegw", "test")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: StatusHealthy} })

	status := hc.CheckHealth()
	if status.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", status.Status)
	}

	hc.AddCheck("slow", func() CheckResult { return CheckResult{Status: StatusDegraded} })
	if status := hc.CheckHealth(); status.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", status.Status)
	}

	hc.AddCheck("down", func() CheckResult { return CheckResult{Status: StatusUnhealthy} })
	if status := hc.CheckHealth(); status.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", status.Status)
	}
}

func TestDatabaseHealthCheckNilHandle(t *testing.T) {
	check := DatabaseHealthCheck(nil)
	result := check()
	if result.Status != StatusDegraded {
		t.Fatalf("expected degraded for nil db, got %s", result.Status)
	}
}

func TestConfigurationHealthCheck(t *testing.T) {
	check := ConfigurationHealthCheck(map[string]string{"LLM_MODEL": ""})
	if result := check(); result.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy on missing config, got %s", result.Status)
	}
	check = ConfigurationHealthCheck(map[string]string{"LLM_MODEL": "gpt-4o-mini"})
	if result := check(); result.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", result.Status)
	}
}
