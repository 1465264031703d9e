package nelsonsiegel

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/agbru/yieldfit/internal/errors"
)

func TestParamsByName(t *testing.T) {
	t.Parallel()
	p := Params{A1: 1, A2: 2, A3: 3, B: 4}
	for i, name := range ParamNames {
		v, ok := p.Get(name)
		if !ok || v != float64(i+1) {
			t.Errorf("Get(%q) = %v, %v; want %v", name, v, ok, i+1)
		}
	}
	if _, ok := p.Get("c"); ok {
		t.Error("Get(\"c\") should report unknown name")
	}

	q := p.With("a3", 9)
	if q.A3 != 9 || p.A3 != 3 {
		t.Errorf("With must copy: p.A3 = %v, q.A3 = %v", p.A3, q.A3)
	}
	if p.With("zz", 1) != p {
		t.Error("With on unknown name must leave params unchanged")
	}
}

func TestParamsAtPanicsOutOfRange(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("At(4) did not panic")
		}
	}()
	DefaultStart.At(NumParams)
}

func TestFromVectorLength(t *testing.T) {
	t.Parallel()
	if _, err := FromVector([]float64{1, 2, 3}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("FromVector(3 values) error = %v, want invalid input", err)
	}
}

func TestVectorIsACopy(t *testing.T) {
	t.Parallel()
	p := DefaultStart
	v := p.Vector()
	v[0] = 100
	if p.A1 != 0.5 || DefaultStart.A1 != 0.5 {
		t.Error("mutating Vector() result changed the params")
	}
}

func TestParseParams(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Params
		wantErr bool
	}{
		{in: "0.5,0.5,0.5,1", want: DefaultStart},
		{in: " 2.8, -0.57 ,-2.2, 2.6 ", want: Params{2.8, -0.57, -2.2, 2.6}},
		{in: "1,2,3", wantErr: true},
		{in: "1,2,3,x", wantErr: true},
		{in: "1,2,3,NaN", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseParams(tt.in)
		if tt.wantErr {
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("ParseParams(%q) error = %v, want invalid input", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseParams(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestParamsIsFiniteAndString(t *testing.T) {
	t.Parallel()
	if !DefaultStart.IsFinite() {
		t.Error("DefaultStart should be finite")
	}
	if DefaultStart.With("b", math.Inf(-1)).IsFinite() {
		t.Error("params with -Inf reported finite")
	}
	if got := DefaultStart.String(); got != "a1=0.5 a2=0.5 a3=0.5 b=1" {
		t.Errorf("String() = %q", got)
	}
}
