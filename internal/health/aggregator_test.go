package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name   string
	result CheckResult
}

func (s stubChecker) Name() string                      { return s.name }
func (s stubChecker) Check(context.Context) CheckResult { return s.result }

func TestAggregatorOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"全部健康", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"存在降级", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"存在不健康", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
		{"无检查器", nil, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			for i, st := range tt.statuses {
				agg.AddChecker(stubChecker{name: string(rune('a' + i)), result: CheckResult{Status: st}})
			}
			assert.Equal(t, tt.want, agg.OverallStatus(context.Background()))
		})
	}
}

func TestAggregatorReady(t *testing.T) {
	agg := NewAggregator(stubChecker{name: "printer", result: CheckResult{Status: StatusDegraded}})
	// 降级仍就绪
	assert.True(t, agg.Ready(context.Background()))

	agg.AddChecker(stubChecker{name: "database", result: CheckResult{Status: StatusUnhealthy}})
	assert.False(t, agg.Ready(context.Background()))
}

func TestAggregatorCheckAll(t *testing.T) {
	agg := NewAggregator(
		stubChecker{name: "printer", result: CheckResult{Status: StatusHealthy, Message: "dialog ready"}},
		stubChecker{name: "redis", result: CheckResult{Status: StatusHealthy}},
	)
	results := agg.CheckAll(context.Background())
	assert.Len(t, results, 2)
	assert.Equal(t, "dialog ready", results["printer"].Message)
}
