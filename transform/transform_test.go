package transform

import (
	"testing"

	"github.com/rushteam/tonekit/core"
)

const tol = 1e-9

func TestIdentityComposeIsNeutral(t *testing.T) {
	transforms := map[string]ColorTransform{
		"brightness": Brightness(30),
		"contrast":   Contrast(-20),
		"saturation": Saturation(40),
		"sepia":      Sepia(),
		"warmth":     Warmth(),
	}
	for name, tr := range transforms {
		t.Run(name, func(t *testing.T) {
			// Composing with identity on either side must yield the transform unchanged.
			if got := Compose(Identity(), tr); !ApproxEqual(got, tr, tol) {
				t.Errorf("Compose(identity, %s) changed coefficients", name)
			}
			if got := Compose(tr, Identity()); !ApproxEqual(got, tr, tol) {
				t.Errorf("Compose(%s, identity) changed coefficients", name)
			}
		})
	}
}

func TestInvertComposedWithItselfIsIdentity(t *testing.T) {
	got := Compose(Invert(), Invert())
	if !ApproxEqual(got, Identity(), tol) {
		t.Errorf("invert∘invert = %v, want identity", got.Matrix())
	}
}

func TestBrightnessDerivation(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		wantOffset float64
	}{
		{"positive", 20, 51},
		{"negative", -50, -127.5},
		{"zero", 0, 0},
		{"clamped above declared domain", 200, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Brightness(tt.amount)
			for row := 0; row < 3; row++ {
				if got := tr.At(row, 4); got != tt.wantOffset {
					t.Errorf("row %d offset = %v, want %v", row, got, tt.wantOffset)
				}
				if got := tr.At(row, row); got != 1 {
					t.Errorf("row %d diagonal = %v, want 1", row, got)
				}
			}
		})
	}
}

func TestContrastDerivation(t *testing.T) {
	tr := Contrast(50)
	wantFactor := 1.5
	wantOffset := 128 * (1 - 1.5)
	for row := 0; row < 3; row++ {
		if got := tr.At(row, row); got != wantFactor {
			t.Errorf("row %d factor = %v, want %v", row, got, wantFactor)
		}
		if got := tr.At(row, 4); got != wantOffset {
			t.Errorf("row %d offset = %v, want %v", row, got, wantOffset)
		}
	}
	// Alpha row stays untouched.
	if tr.At(3, 3) != 1 || tr.At(3, 4) != 0 {
		t.Error("contrast must not touch the alpha row")
	}
}

func TestSaturationRowsPreserveLuminance(t *testing.T) {
	// Each RGB row of the saturation matrix must sum to 1, so a uniform
	// gray input maps to itself regardless of the factor.
	for _, amount := range []float64{-100, -40, 0, 60, 100} {
		tr := Saturation(amount)
		for row := 0; row < 3; row++ {
			sum := tr.At(row, 0) + tr.At(row, 1) + tr.At(row, 2)
			if diff := sum - 1; diff > tol || diff < -tol {
				t.Errorf("amount %v row %d sums to %v, want 1", amount, row, sum)
			}
		}
	}
}

func TestSaturationFullDesaturationIsGrayscale(t *testing.T) {
	if got := Saturation(-100); !ApproxEqual(got, Grayscale(), tol) {
		t.Error("Saturation(-100) should equal the grayscale preset")
	}
}

func TestChannelGain(t *testing.T) {
	tr := ChannelGain(2, 50)
	if got := tr.At(2, 2); got != 1.5 {
		t.Errorf("blue diagonal = %v, want 1.5", got)
	}
	if tr.At(0, 0) != 1 || tr.At(1, 1) != 1 {
		t.Error("other channels must stay at 1")
	}
}

func TestGamma(t *testing.T) {
	tests := []struct {
		name       string
		gamma      float64
		wantFactor float64
		wantOffset float64
		wantErr    bool
	}{
		{"below one", 0.8, 1 + 0.2*0.5, 0.2 * 50, false},
		{"above one", 1.5, 1 / (1 + 0.5*0.3), -0.5 * 30, false},
		{"exactly one is identity", 1, 1, 0, false},
		{"zero rejected", 0, 0, 0, true},
		{"negative rejected", -0.5, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Gamma(tt.gamma)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !core.IsInvalidParameter(err) {
					t.Errorf("error code = %v, want INVALID_PARAMETER", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Gamma(%v) error = %v", tt.gamma, err)
			}
			for row := 0; row < 3; row++ {
				if got := tr.At(row, row); !approx(got, tt.wantFactor) {
					t.Errorf("factor = %v, want %v", got, tt.wantFactor)
				}
				if got := tr.At(row, 4); !approx(got, tt.wantOffset) {
					t.Errorf("offset = %v, want %v", got, tt.wantOffset)
				}
			}
		})
	}
}

func TestFromUnknownKind(t *testing.T) {
	_, err := From(Kind("vortex"), nil)
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !core.IsUnknownOperation(err) {
		t.Errorf("error code = %v, want UNKNOWN_OPERATION", err)
	}
}

func TestComposeOrderMatters(t *testing.T) {
	// contrast-then-brightness and brightness-then-contrast differ in the
	// offset column: the later transform's linear block rescales the
	// earlier offset.
	a := Brightness(20) // offset 51
	b := Contrast(50)   // factor 1.5, offset -64

	ab := Compose(a, b) // brightness first
	ba := Compose(b, a) // contrast first

	// b ∘ a: offset = 1.5*51 - 64
	if got := ab.At(0, 4); !approx(got, 1.5*51-64) {
		t.Errorf("(b∘a) offset = %v, want %v", got, 1.5*51-64)
	}
	// a ∘ b: offset = -64 + 51
	if got := ba.At(0, 4); !approx(got, -64+51) {
		t.Errorf("(a∘b) offset = %v, want %v", got, -64.0+51)
	}
}

func TestLerpStrength(t *testing.T) {
	full := Contrast(50)
	half := Lerp(Identity(), full, 0.5)
	if got := half.At(0, 0); !approx(got, 1.25) {
		t.Errorf("half-strength factor = %v, want 1.25", got)
	}
	if got := Lerp(Identity(), full, 0); !ApproxEqual(got, Identity(), tol) {
		t.Error("zero strength must be identity")
	}
	if got := Lerp(Identity(), full, 1); !ApproxEqual(got, full, tol) {
		t.Error("full strength must be the transform itself")
	}
	// Out-of-range strength is clamped, never rejected.
	if got := Lerp(Identity(), full, 1.7); !ApproxEqual(got, full, tol) {
		t.Error("strength above 1 must clamp to full")
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	tr := Sepia()
	if got := FromMatrix(tr.Matrix()); !ApproxEqual(got, tr, tol) {
		t.Error("FromMatrix(Matrix()) must round-trip exactly")
	}
	// Identity wire value matches the core helper.
	if got := Identity().Matrix(); got != core.IdentityMatrix() {
		t.Error("Identity().Matrix() must equal core.IdentityMatrix()")
	}
}

func approx(got, want float64) bool {
	diff := got - want
	return diff < tol && diff > -tol
}
