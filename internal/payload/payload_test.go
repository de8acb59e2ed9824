package payload

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "object", raw: `{"title": "Card Show"}`},
		{name: "empty object", raw: `{}`},
		{name: "array", raw: `[1, 2]`, wantErr: true},
		{name: "scalar", raw: `"hello"`, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "garbage", raw: `{broken`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(json.RawMessage(tc.raw))
			if tc.wantErr && !errors.Is(err, ErrNotObject) {
				t.Fatalf("Parse err = %v, want ErrNotObject", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Parse: %v", err)
			}
		})
	}
}

func TestString(t *testing.T) {
	p := FromMap(map[string]any{
		"title":   "  Card Show  ",
		"blank":   "   ",
		"numeric": 5.0,
	})

	if s, ok := p.String("title"); !ok || s != "Card Show" {
		t.Errorf("String(title) = %q, %v; want trimmed value", s, ok)
	}
	if _, ok := p.String("blank"); ok {
		t.Error("String(blank) ok = true, want false for whitespace-only")
	}
	if _, ok := p.String("numeric"); ok {
		t.Error("String(numeric) ok = true, want false for non-string")
	}
	if _, ok := p.String("missing"); ok {
		t.Error("String(missing) ok = true, want false")
	}
}

func TestFloat(t *testing.T) {
	p := FromMap(map[string]any{
		"number":  12.5,
		"string":  " 7.25 ",
		"words":   "five",
		"boolean": true,
	})

	if f, ok := p.Float("number"); !ok || f != 12.5 {
		t.Errorf("Float(number) = %v, %v", f, ok)
	}
	if f, ok := p.Float("string"); !ok || f != 7.25 {
		t.Errorf("Float(string) = %v, %v; want numeric string accepted", f, ok)
	}
	if _, ok := p.Float("words"); ok {
		t.Error("Float(words) ok = true, want false")
	}
	if _, ok := p.Float("boolean"); ok {
		t.Error("Float(boolean) ok = true, want false")
	}
}

func TestStringSlice(t *testing.T) {
	p := FromMap(map[string]any{
		"mixed":  []any{"cards", 42, "  ", "memorabilia"},
		"scalar": "cards",
	})

	got := p.StringSlice("mixed")
	if len(got) != 2 || got[0] != "cards" || got[1] != "memorabilia" {
		t.Errorf("StringSlice(mixed) = %v, want non-string and blank elements dropped", got)
	}
	if got := p.StringSlice("scalar"); got != nil {
		t.Errorf("StringSlice(scalar) = %v, want nil for non-array", got)
	}
	if got := p.StringSlice("missing"); got != nil {
		t.Errorf("StringSlice(missing) = %v, want nil", got)
	}
}

func TestObjects(t *testing.T) {
	p := FromMap(map[string]any{
		"schedule": []any{
			map[string]any{"date": "2025-10-04"},
			"not an object",
			map[string]any{"date": "2025-10-05"},
		},
	})

	got := p.Objects("schedule")
	if len(got) != 2 {
		t.Fatalf("Objects(schedule) len = %d, want 2", len(got))
	}
	if d, ok := got[0].String("date"); !ok || d != "2025-10-04" {
		t.Errorf("first object date = %q, %v", d, ok)
	}
}
