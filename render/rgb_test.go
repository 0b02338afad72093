package render

import "testing"

func TestBlend(t *testing.T) {
	a, b := RGB{0, 0, 0}, RGB{200, 100, 50}
	tests := []struct {
		alpha float64
		want  RGB
	}{
		{0, a},
		{1, b},
		{0.5, RGB{100, 50, 25}},
		{-1, a},
		{2, b},
	}
	for _, tt := range tests {
		if got := Blend(a, b, tt.alpha); got != tt.want {
			t.Errorf("Blend(%v) = %v, want %v", tt.alpha, got, tt.want)
		}
	}
}

func TestColorHelpers(t *testing.T) {
	if got := Scale(RGB{200, 100, 50}, 2); got != (RGB{255, 200, 100}) {
		t.Errorf("Scale = %v", got)
	}
	if got := Grayscale(RGB{255, 255, 255}); got != (RGB{255, 255, 255}) {
		t.Errorf("Grayscale white = %v", got)
	}
	if got := Invert(RGB{0, 128, 255}); got != (RGB{255, 127, 0}) {
		t.Errorf("Invert = %v", got)
	}
	if got := Lerp(RGB{0, 0, 0}, RGB{100, 200, 50}, 0.5); got != (RGB{50, 100, 25}) {
		t.Errorf("Lerp = %v", got)
	}
	if got := (RGB{26, 27, 38}).Hex(); got != "#1a1b26" {
		t.Errorf("Hex = %q", got)
	}
}
