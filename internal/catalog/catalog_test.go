package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Currency() != "INR" {
		t.Errorf("currency: got %q, want INR", c.Currency())
	}
	var types []string
	for _, p := range c.Plans() {
		types = append(types, p.Type)
		if len(p.Features) == 0 {
			t.Errorf("plan %s has no features", p.Type)
		}
	}
	if got := strings.Join(types, ","); got != "basic,standard,premium" {
		t.Errorf("plan order: got %s", got)
	}
	if _, ok := c.Get("gold"); ok {
		t.Error("Get returned an unknown plan")
	}
}

func TestBreakdownSumsToTotal(t *testing.T) {
	c := MustDefault()
	for _, p := range c.Plans() {
		b := c.Breakdown(p)
		if !b.Base.Add(b.GST).Equal(b.Total) {
			t.Errorf("%s: %s + %s != %s", p.Type, b.Base, b.GST, b.Total)
		}
		if !b.Total.Equal(decimal.NewFromInt(p.Price)) {
			t.Errorf("%s: total %s, want %d", p.Type, b.Total, p.Price)
		}
	}

	standard, _ := c.Get("standard")
	b := c.Breakdown(standard)
	if b.Base.String() != "8473.73" || b.GST.String() != "1525.27" {
		t.Errorf("standard breakdown: base %s gst %s", b.Base, b.GST)
	}
}

func TestSplit(t *testing.T) {
	c := MustDefault()
	if b := c.Split(118); b.Base.String() != "100" || b.GST.String() != "18" {
		t.Errorf("Split(118): base %s gst %s", b.Base, b.GST)
	}
	if b := c.Split(0); !b.Base.IsZero() || !b.GST.IsZero() {
		t.Errorf("Split(0): base %s gst %s", b.Base, b.GST)
	}
}

func TestMinorUnits(t *testing.T) {
	if got := MinorUnits(9999); got != 999900 {
		t.Errorf("MinorUnits(9999): got %d, want 999900", got)
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad rate", "gst_rate: abc\nplans:\n  - {type: a, name: A, price: 1}\n"},
		{"empty", "gst_rate: \"0.18\"\nplans: []\n"},
		{"duplicate", "gst_rate: \"0.18\"\nplans:\n  - {type: a, name: A, price: 1}\n  - {type: a, name: B, price: 2}\n"},
		{"free plan", "gst_rate: \"0.18\"\nplans:\n  - {type: a, name: A, price: 0}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("Parse accepted an invalid catalog")
			}
		})
	}
}
