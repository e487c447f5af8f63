package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relbench/internal/version"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env     string
		level   string
		wantErr bool
	}{
		{"local", "", false},
		{"dev", "debug", false},
		{"prod", "warn", false},
		{"staging", "", true},
		{"prod", "loud", true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger(%q, %q) error = %v, wantErr %v", tt.env, tt.level, err, tt.wantErr)
			}
			if err == nil && l == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zap.WarnLevel) {
		t.Error("warn should be enabled")
	}
}

func TestBuildConfig_StderrAndVersion(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		cfg, err := buildConfig(env, "")
		if err != nil {
			t.Fatalf("buildConfig(%q): %v", env, err)
		}
		if len(cfg.OutputPaths) != 1 || cfg.OutputPaths[0] != "stderr" {
			t.Errorf("%s: OutputPaths = %v", env, cfg.OutputPaths)
		}
		if cfg.InitialFields["version"] != version.Version {
			t.Errorf("%s: InitialFields = %v", env, cfg.InitialFields)
		}
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger, got nil")
	}

	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected stored logger")
	}

	fallback := zap.NewExample()
	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger")
	}
	if FromContextOr(ctx, fallback) != l {
		t.Error("stored logger must win over fallback")
	}
}
