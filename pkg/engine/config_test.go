package engine

import (
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"single worker", DefaultConfig().WithWorkers(1), false},
		{"zero workers", DefaultConfig().WithWorkers(0), true},
		{"negative workers", DefaultConfig().WithWorkers(-1), true},
		{"too many workers", DefaultConfig().WithWorkers(maxWorkers + 1), true},
		{"bad threshold", &Config{Workers: 4, SequentialThreshold: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v not wrapped in ErrInvalidConfig", err)
			}
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	if _, err := New(DefaultConfig().WithWorkers(0), nil, nil, nil); err == nil {
		t.Error("New accepted zero workers")
	}
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	eng, err := New(nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if eng.cfg.Workers < 1 {
		t.Errorf("Workers = %d", eng.cfg.Workers)
	}
}
