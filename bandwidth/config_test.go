package bandwidth

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-membw/internal/affinity"
	"github.com/cwbudde/algo-membw/internal/buffer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Threads != 1 || cfg.ArraySize != DefaultArraySize || cfg.NTimes != DefaultNTimes {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Phases, []Phase{PhaseCopy}) {
		t.Fatalf("phases = %v, want [Copy]", cfg.Phases)
	}
	if cfg.Tail != TailWarn || cfg.Pool != buffer.PoolHeap {
		t.Fatalf("tail = %v, pool = %v", cfg.Tail, cfg.Pool)
	}
	if cfg.Logger == nil {
		t.Fatal("default logger is nil")
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(
		WithThreads(8),
		WithArraySize(1024),
		WithNTimes(4),
		WithOffset(16),
		WithPhases(PhaseTriad, PhaseCopy),
		WithAffinity(affinity.Disabled()),
		WithTailPolicy(TailReject),
		WithPool(buffer.PoolMapped),
		WithMaxWorkers(16),
		WithValidation(true),
		nil,
	)
	if cfg.Threads != 8 || cfg.ArraySize != 1024 || cfg.NTimes != 4 || cfg.Offset != 16 {
		t.Fatalf("sizes not applied: %+v", cfg)
	}
	if cfg.Binder.Name() != "disabled" {
		t.Fatalf("binder = %s, want disabled", cfg.Binder.Name())
	}
	if cfg.Tail != TailReject || cfg.Pool != buffer.PoolMapped || cfg.MaxWorkers != 16 || !cfg.Validate {
		t.Fatalf("policies not applied: %+v", cfg)
	}

	phases, err := cfg.enabledPhases()
	if err != nil {
		t.Fatalf("enabledPhases: %v", err)
	}
	if !reflect.DeepEqual(phases, []Phase{PhaseCopy, PhaseTriad}) {
		t.Fatalf("phases = %v, want [Copy Triad]", phases)
	}
}

func TestNilOptionsIgnored(t *testing.T) {
	cfg := ApplyOptions(WithAffinity(nil), WithMapper(nil), WithLogger(nil), WithPhases(), WithMaxWorkers(-3))
	if cfg.Binder != nil || cfg.Mapper != nil || cfg.Logger == nil {
		t.Fatalf("nil options changed config: %+v", cfg)
	}
	if len(cfg.Phases) != 1 || cfg.MaxWorkers != 0 {
		t.Fatalf("phases = %v, max workers = %d", cfg.Phases, cfg.MaxWorkers)
	}
}

func TestParsePhases(t *testing.T) {
	tests := []struct {
		in   string
		want []Phase
	}{
		{"copy", []Phase{PhaseCopy}},
		{"Copy, triad", []Phase{PhaseCopy, PhaseTriad}},
		{"all", []Phase{PhaseCopy, PhaseScale, PhaseAdd, PhaseTriad}},
		{"scale,,add", []Phase{PhaseScale, PhaseAdd}},
	}
	for _, tt := range tests {
		got, err := ParsePhases(tt.in)
		if err != nil {
			t.Fatalf("ParsePhases(%q): %v", tt.in, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParsePhases(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "copy,fma", ","} {
		if _, err := ParsePhases(bad); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("ParsePhases(%q) error = %v, want ErrInvalidConfig", bad, err)
		}
	}
}

func TestParseTailPolicy(t *testing.T) {
	for _, p := range []TailPolicy{TailWarn, TailDrop, TailReject} {
		got, err := ParseTailPolicy(p.String())
		if err != nil || got != p {
			t.Fatalf("ParseTailPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseTailPolicy("pad"); err == nil {
		t.Fatal("expected error")
	}
}

func TestPhaseWords(t *testing.T) {
	want := [NumPhases]int{2, 2, 3, 3}
	for p := range NumPhases {
		if got := p.Words(); got != want[p] {
			t.Fatalf("%v.Words() = %d, want %d", p, got, want[p])
		}
	}
	if s := Phase(7).String(); s != "Phase(7)" {
		t.Fatalf("String() = %q", s)
	}
}
