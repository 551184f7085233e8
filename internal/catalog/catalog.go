// Package catalog loads the design plans sold through checkout and prices them.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var plansYAML []byte

// Plan is one purchasable design package. Price is in rupees, GST inclusive.
type Plan struct {
	Type         string   `yaml:"type" json:"type"`
	Name         string   `yaml:"name" json:"name"`
	Price        int64    `yaml:"price" json:"price"`
	DeliveryDays int      `yaml:"delivery_days" json:"delivery_days"`
	Popular      bool     `yaml:"popular" json:"popular"`
	Description  string   `yaml:"description" json:"description"`
	Features     []string `yaml:"features" json:"features"`
}

// Breakdown splits a GST-inclusive price into its taxable base and tax.
type Breakdown struct {
	Base    decimal.Decimal `json:"base"`
	GST     decimal.Decimal `json:"gst"`
	GSTRate decimal.Decimal `json:"gst_rate"`
	Total   decimal.Decimal `json:"total"`
}

type file struct {
	Currency string `yaml:"currency"`
	GSTRate  string `yaml:"gst_rate"`
	Plans    []Plan `yaml:"plans"`
}

// Catalog is immutable once loaded and safe for concurrent use.
type Catalog struct {
	currency string
	gstRate  decimal.Decimal
	plans    []Plan
	byType   map[string]Plan
}

// Default parses the embedded plan list.
func Default() (*Catalog, error) {
	return Parse(plansYAML)
}

// MustDefault is Default for wiring code; the embedded file is validated by tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a plan list.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}
	if f.Currency == "" {
		f.Currency = "INR"
	}
	rate, err := decimal.NewFromString(f.GSTRate)
	if err != nil {
		return nil, fmt.Errorf("invalid gst_rate %q: %w", f.GSTRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("gst_rate %s out of range", rate)
	}
	if len(f.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}

	c := &Catalog{currency: f.Currency, gstRate: rate, byType: make(map[string]Plan, len(f.Plans))}
	for i, p := range f.Plans {
		if p.Type == "" || p.Name == "" {
			return nil, fmt.Errorf("plans[%d]: type and name are required", i)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("plans[%d]: price must be positive", i)
		}
		if _, dup := c.byType[p.Type]; dup {
			return nil, fmt.Errorf("plans[%d]: duplicate plan type %q", i, p.Type)
		}
		c.byType[p.Type] = p
		c.plans = append(c.plans, p)
	}
	return c, nil
}

func (c *Catalog) Currency() string {
	return c.currency
}

// Plans returns the plans in file order.
func (c *Catalog) Plans() []Plan {
	return append([]Plan(nil), c.plans...)
}

func (c *Catalog) Get(planType string) (Plan, bool) {
	p, ok := c.byType[planType]
	return p, ok
}

func (c *Catalog) Breakdown(p Plan) Breakdown {
	return c.Split(p.Price)
}

// Split divides a GST-inclusive rupee amount. The base is rounded to paise and GST takes
// the remainder, so the parts always sum to the total.
func (c *Catalog) Split(amount int64) Breakdown {
	total := decimal.NewFromInt(amount)
	base := total.Div(decimal.NewFromInt(1).Add(c.gstRate)).Round(2)
	return Breakdown{
		Base:    base,
		GST:     total.Sub(base),
		GSTRate: c.gstRate,
		Total:   total,
	}
}

// MinorUnits converts rupees to paise for the payment gateway.
func MinorUnits(rupees int64) int64 {
	return decimal.NewFromInt(rupees).Mul(decimal.NewFromInt(100)).IntPart()
}
