package main

import (
	"testing"
	"time"

	"github.com/campus-fixit/fixit/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App:        config.AppConfig{Host: "0.0.0.0", Port: "8080"},
		Logger:     config.LoggerConfig{Level: "info"},
		Tracker:    config.TrackerConfig{Step: time.Second},
		Classifier: config.ClassifierConfig{Fallback: true},
	}
}

func TestApplyFlagsStep(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want time.Duration
	}{
		{name: "default", args: nil, want: time.Second},
		{name: "milliseconds", args: []string{"--step", "250ms"}, want: 250 * time.Millisecond},
		{name: "sub millisecond", args: []string{"--step", "500us"}, want: 500 * time.Microsecond},
		{name: "fractional", args: []string{"--step=1.5ms"}, want: 1500 * time.Microsecond},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			if err := applyFlags(cfg, tc.args); err != nil {
				t.Fatalf("applyFlags(%v): %v", tc.args, err)
			}
			if got := cfg.Tracker.StepUnit(); got != tc.want {
				t.Fatalf("StepUnit() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyFlagsRejectsBadStep(t *testing.T) {
	for _, args := range [][]string{
		{"--step", "0"},
		{"--step", "-1s"},
		{"--step", "soon"},
	} {
		cfg := testConfig()
		if err := applyFlags(cfg, args); err == nil {
			t.Errorf("applyFlags(%v): expected error", args)
		}
		if cfg.Tracker.Step != time.Second {
			t.Errorf("applyFlags(%v) changed step to %v", args, cfg.Tracker.Step)
		}
	}
}

func TestApplyFlagsOverrides(t *testing.T) {
	cfg := testConfig()
	args := []string{"--port", "9000", "--log-level", "debug", "--fallback=false", "--rules", "rules.yaml"}
	if err := applyFlags(cfg, args); err != nil {
		t.Fatal(err)
	}
	if cfg.App.Port != "9000" || cfg.Logger.Level != "debug" || cfg.Classifier.Fallback || cfg.Classifier.RulesFile != "rules.yaml" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}
