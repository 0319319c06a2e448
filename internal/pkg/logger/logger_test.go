package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "default config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "console output",
			config: &Config{
				Level:  "info",
				Format: "console",
				Output: "console",
			},
			wantErr: false,
		},
		{
			name: "file output",
			config: &Config{
				Level:  "debug",
				Format: "json",
				Output: "file",
				File: FileConfig{
					Filename:   "/tmp/minidrive-test.log",
					MaxSize:    10,
					MaxAge:     7,
					MaxBackups: 3,
					Compress:   true,
				},
			},
			wantErr: false,
		},
		{
			name: "invalid level",
			config: &Config{
				Level:  "verbose",
				Format: "json",
				Output: "console",
			},
			wantErr: true,
		},
		{
			name: "invalid format",
			config: &Config{
				Level:  "info",
				Format: "xml",
				Output: "console",
			},
			wantErr: true,
		},
		{
			name: "file output without filename",
			config: &Config{
				Level:  "info",
				Format: "json",
				Output: "file",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && log == nil {
				t.Error("New() returned nil logger without error")
			}
		})
	}
}

func TestWithAndNamed(t *testing.T) {
	log, err := New(&Config{Level: "error", Format: "json", Output: "console"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	child := log.With(zap.String("component", "test"))
	if child == nil || child.config != log.config {
		t.Error("With() should share the parent config")
	}

	named := log.Named("sub")
	if named == nil {
		t.Error("Named() returned nil")
	}
}

func TestGlobalLogger(t *testing.T) {
	if err := InitGlobal(&Config{Level: "error", Format: "json", Output: "console"}); err != nil {
		t.Fatalf("InitGlobal() error = %v", err)
	}

	if L() == nil {
		t.Error("L() returned nil after InitGlobal")
	}
}
