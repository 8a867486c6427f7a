package catalog

import "testing"

func TestNormalizeHash(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "plain", raw: "a1b2c3d4", want: "a1b2c3d4", ok: true},
		{name: "upper with prefix", raw: " 0XA1B2C3D4 ", want: "a1b2c3d4", ok: true},
		{name: "sixteen digits keep low half", raw: "DEADBEEFcafebabe", want: "cafebabe", ok: true},
		{name: "too short", raw: "abc", ok: false},
		{name: "non hex", raw: "zzzzzzzz", ok: false},
		{name: "empty", raw: "", ok: false},
		{name: "twelve digits", raw: "0123456789ab", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeHash(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("NormalizeHash(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}
