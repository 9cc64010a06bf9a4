package binding

import (
	"encoding/json"
	"testing"
)

func sampleData() any {
	return map[string]any{
		"user": map[string]any{"name": "Ada", "age": float64(36), "admin": true},
		"items": []any{
			map[string]any{"name": "pen", "price": 1.5},
			map[string]any{"name": "ink"},
		},
		"total": json.Number("12.40"),
		"empty": nil,
	}
}

func TestInterpolate(t *testing.T) {
	data := sampleData()
	tests := []struct {
		in   string
		want string
	}{
		{"Hello ${user.name}!", "Hello Ada!"},
		{"${ user.age } years", "36 years"},
		{"admin=${user.admin}", "admin=true"},
		{"${items[0].name} ${items[0].price}", "pen 1.5"},
		{"${items[1].name}", "ink"},
		{"total ${total}", "total 12.40"},
		{"[${empty}]", "[]"},
		{"${missing.path}", "${missing.path}"},
		{"${user}", "${user}"},
		{"${items[5].name}", "${items[5].name}"},
		{"${}", "${}"},
		{"no placeholders", "no placeholders"},
	}
	for _, tc := range tests {
		if got := Interpolate(tc.in, data); got != tc.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("Hi ${user.name}", nil); got != "Hi ${user.name}" {
		t.Fatalf("nil data should keep placeholders, got %q", got)
	}
}

func TestLookupBadIndex(t *testing.T) {
	data := sampleData()
	for _, path := range []string{"items[x]", "items[0", "user[0]", "user.name.first"} {
		if _, ok := Lookup(data, path); ok {
			t.Fatalf("Lookup(%q) should fail", path)
		}
	}
	v, ok := Lookup(map[string]any{"rows": []any{[]any{"a", "b"}}}, "rows[0][1]")
	if !ok || v != "b" {
		t.Fatalf("nested index lookup = %v, %v", v, ok)
	}
}
