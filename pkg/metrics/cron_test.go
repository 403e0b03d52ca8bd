package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("payment-timeout", 250*time.Millisecond)
	m.IncSuccess("payment-timeout")
	m.IncFailure("payment-timeout")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := counterValue(mfs, "fornodoro_job_success_total", "payment-timeout"); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got, err := counterValue(mfs, "fornodoro_job_failure_total", "payment-timeout"); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
	if got, err := histogramSum(mfs, "fornodoro_job_duration_seconds", "payment-timeout"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCronJobMetricsNoopWithoutRegisterer(t *testing.T) {
	m := NewCronJobMetrics(nil)
	m.ObserveDuration("payment-timeout", time.Second)
	m.IncSuccess("payment-timeout")
	m.IncFailure("payment-timeout")
}

func counterValue(mfs []*dto.MetricFamily, name, job string) (float64, error) {
	metric, err := findMetric(mfs, name, job)
	if err != nil {
		return 0, err
	}
	return metric.GetCounter().GetValue(), nil
}

func histogramSum(mfs []*dto.MetricFamily, name, job string) (float64, error) {
	metric, err := findMetric(mfs, name, job)
	if err != nil {
		return 0, err
	}
	return metric.GetHistogram().GetSampleSum(), nil
}

func findMetric(mfs []*dto.MetricFamily, name, job string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric, nil
				}
			}
		}
		return nil, fmt.Errorf("metric %q missing job=%s", name, job)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}
