package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMilestonesKeepKeyOrder(t *testing.T) {
	in := `{"zeta":1,"alpha":{"nested":[1,2,{"x":"y"}]},"mid":"text","none":null}`

	var m Milestones
	if err := json.Unmarshal([]byte(in), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	wantNames := []string{"zeta", "alpha", "mid", "none"}
	if len(m) != len(wantNames) {
		t.Fatalf("got %d milestones, want %d", len(m), len(wantNames))
	}
	for i, name := range wantNames {
		if m[i].Name != name {
			t.Errorf("milestone %d = %q, want %q", i, m[i].Name, name)
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}

func TestMilestonesGetSet(t *testing.T) {
	var m Milestones
	if _, ok := m.Get("missing"); ok {
		t.Error("Get on empty milestones should report missing")
	}
	if err := m.Set("first_wr", "2021-03-04"); err != nil {
		t.Fatal(err)
	}
	if err := m.Set("count", 3); err != nil {
		t.Fatal(err)
	}
	if err := m.Set("first_wr", "2022-01-01"); err != nil {
		t.Fatal(err)
	}

	if len(m) != 2 {
		t.Fatalf("Set should replace in place, got %d entries", len(m))
	}
	if m[0].Name != "first_wr" {
		t.Errorf("replaced entry moved to %q", m[0].Name)
	}
	raw, ok := m.Get("first_wr")
	if !ok || string(raw) != `"2022-01-01"` {
		t.Errorf("Get(first_wr) = %s, %v", raw, ok)
	}
}

func TestMilestonesNullAndEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"null", `null`, `{}`},
		{"empty object", `{}`, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Milestones
			if err := json.Unmarshal([]byte(tt.in), &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if m == nil {
				t.Fatal("decoded milestones should be non-nil")
			}
			out, err := json.Marshal(m)
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != tt.want {
				t.Errorf("got %s, want %s", out, tt.want)
			}
		})
	}
}

func TestMilestonesRejectNonObject(t *testing.T) {
	var m Milestones
	if err := json.Unmarshal([]byte(`[1,2]`), &m); err == nil {
		t.Error("expected an error for a JSON array")
	}
}

func TestMilestonesKeepHTMLCharacters(t *testing.T) {
	var m Milestones
	if err := m.Set("note", "<b>&</b>"); err != nil {
		t.Fatal(err)
	}
	raw, _ := m.Get("note")
	if string(raw) != `"<b>&</b>"` {
		t.Errorf("Set stored %s", raw)
	}

	in := `{"note":"<b>&</b>","range":"1 < 2 > 0"}`
	var decoded Milestones
	if err := json.Unmarshal([]byte(in), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := EncodeJSON(decoded)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(out) != in {
		t.Errorf("encoded = %s, want %s", out, in)
	}

	var again Milestones
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("unmarshal again: %v", err)
	}
	if !reflect.DeepEqual(again, decoded) {
		t.Errorf("round trip = %#v, want %#v", again, decoded)
	}
}
