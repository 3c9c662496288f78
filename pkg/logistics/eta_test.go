package logistics

import (
	"math/rand"
	"testing"
	"time"
)

func TestCalculateETABreakdown(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	originalETA := now.Add(48 * time.Hour).Format(time.RFC3339)
	rng := rand.New(rand.NewSource(42))

	estimate, err := calculateETAAt("ABC123", originalETA, AnomalyTrafficJam, "medium", now, rng)
	if err != nil {
		t.Fatalf("calculateETAAt returned error: %v", err)
	}

	if estimate.DelayBreakdown.BaseDelay != 2.0 {
		t.Errorf("expected base delay 2.0 for medium severity, got %v", estimate.DelayBreakdown.BaseDelay)
	}
	if estimate.DelayBreakdown.AnomalyFactor != 1.2 {
		t.Errorf("expected anomaly factor 1.2 for traffic_jam, got %v", estimate.DelayBreakdown.AnomalyFactor)
	}
	if f := trafficFactors[estimate.CurrentConditions.Traffic]; f != estimate.DelayBreakdown.TrafficFactor {
		t.Errorf("traffic factor %v does not match condition %s", estimate.DelayBreakdown.TrafficFactor, estimate.CurrentConditions.Traffic)
	}
	if f := weatherFactors[estimate.CurrentConditions.Weather]; f != estimate.DelayBreakdown.WeatherFactor {
		t.Errorf("weather factor %v does not match condition %s", estimate.DelayBreakdown.WeatherFactor, estimate.CurrentConditions.Weather)
	}

	min := 2.0 * 1.2 * 0.85
	max := 2.0 * 1.2 * 2.5 * 2.5 * 1.15
	if estimate.TotalDelayHours < min || estimate.TotalDelayHours > max {
		t.Errorf("total delay %v outside expected range [%v, %v]", estimate.TotalDelayHours, min, max)
	}

	newETA, err := time.Parse(time.RFC3339, estimate.NewETA)
	if err != nil {
		t.Fatalf("new eta is not RFC3339: %v", err)
	}
	if !newETA.After(now) {
		t.Errorf("new eta %v is not in the future", newETA)
	}
}

func TestCalculateETAUnknownInputsFallBack(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	originalETA := now.Add(24 * time.Hour).Format(time.RFC3339)
	rng := rand.New(rand.NewSource(7))

	estimate, err := calculateETAAt("ABC123", originalETA, AnomalyType("alien_invasion"), "apocalyptic", now, rng)
	if err != nil {
		t.Fatalf("calculateETAAt returned error: %v", err)
	}
	if estimate.DelayBreakdown.BaseDelay != 2.0 {
		t.Errorf("expected default base delay 2.0, got %v", estimate.DelayBreakdown.BaseDelay)
	}
	if estimate.DelayBreakdown.AnomalyFactor != 1.0 {
		t.Errorf("expected default anomaly factor 1.0, got %v", estimate.DelayBreakdown.AnomalyFactor)
	}
}

func TestCalculateETAClampsToFuture(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	originalETA := now.Add(-72 * time.Hour).Format(time.RFC3339)
	rng := rand.New(rand.NewSource(1))

	estimate, err := calculateETAAt("ABC123", originalETA, AnomalyRouteDeviation, "low", now, rng)
	if err != nil {
		t.Fatalf("calculateETAAt returned error: %v", err)
	}

	newETA, err := time.Parse(time.RFC3339, estimate.NewETA)
	if err != nil {
		t.Fatalf("new eta is not RFC3339: %v", err)
	}
	if !newETA.Equal(now.Add(time.Hour)) {
		t.Errorf("expected new eta clamped to now+1h, got %v", newETA)
	}
	if estimate.TotalDelayHours != 73.0 {
		t.Errorf("expected recomputed delay of 73 hours, got %v", estimate.TotalDelayHours)
	}
}

func TestCalculateETAConfidence(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	originalETA := now.Add(48 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name        string
		anomalyType AnomalyType
		severity    string
		want        float64
	}{
		{"baseline", AnomalyTrafficJam, "medium", 0.85},
		{"critical", AnomalyTrafficJam, "critical", 0.68},
		{"weather", AnomalyWeather, "medium", 0.77},
		{"critical breakdown", AnomalyVehicleBreakdown, "critical", 0.61},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(3))
			estimate, err := calculateETAAt("ABC123", originalETA, tt.anomalyType, tt.severity, now, rng)
			if err != nil {
				t.Fatalf("calculateETAAt returned error: %v", err)
			}
			if estimate.ConfidenceLevel != tt.want {
				t.Errorf("expected confidence %v, got %v", tt.want, estimate.ConfidenceLevel)
			}
		})
	}
}

func TestCalculateETAInvalidOriginal(t *testing.T) {
	_, err := CalculateETA("ABC123", "not-a-timestamp", AnomalyWeather, "high")
	if err == nil {
		t.Fatal("expected error for invalid original eta")
	}
}
