package adminstub

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sangkips/admin-console/internal/domain/entity"
)

// Fixture is the catalog data the stub serves
type Fixture struct {
	Company  CompanyInfo      `yaml:"company"`
	Clients  []FixtureClient  `yaml:"clients"`
	Products []FixtureProduct `yaml:"products"`
}

// CompanyInfo is printed in the slip header
type CompanyInfo struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	GSTIN   string `yaml:"gstin"`
}

type FixtureClient struct {
	ID          string `yaml:"id"`
	ClientID    string `yaml:"client_id"`
	ClientName  string `yaml:"client_name"`
	CompanyName string `yaml:"company_name"`
	BrandName   string `yaml:"brand_name"`
}

// FixtureProduct keeps the price as text so it is never routed through a float
type FixtureProduct struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	UnitPrice string `yaml:"unit_price"`
}

const defaultFixture = `
company:
  name: Acme Digital Services
  address: 221B Residency Road, Bengaluru 560025
  gstin: 29ABCDE1234F1Z5
clients:
  - id: 65f1a2b3c4d5e6f708192a01
    client_id: CL-1001
    client_name: Asha Rao
    company_name: Rao Foods Pvt Ltd
    brand_name: Rao Foods
  - id: 65f1a2b3c4d5e6f708192a02
    client_id: CL-1002
    client_name: Vikram Shah
    company_name: Shah Textiles LLP
    brand_name: Shah Weaves
  - id: 65f1a2b3c4d5e6f708192a03
    client_id: CL-1003
    client_name: Meera Iyer
    company_name: Iyer Clinics
    brand_name: ""
products:
  - id: 65f1b0c0d0e0f00011223301
    name: Website Maintenance
    unit_price: "15000.00"
  - id: 65f1b0c0d0e0f00011223302
    name: SEO Package
    unit_price: "8999.50"
  - id: 65f1b0c0d0e0f00011223303
    name: Social Media Management
    unit_price: "12000"
`

// DefaultFixture returns the built-in catalog
func DefaultFixture() (*Fixture, error) {
	return parseFixture([]byte(defaultFixture))
}

// LoadFixture reads a YAML fixture from path; an empty path yields the built-in catalog
func LoadFixture(path string) (*Fixture, error) {
	if path == "" {
		return DefaultFixture()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("adminstub: read fixture %s: %w", path, err)
	}
	return parseFixture(raw)
}

func parseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("adminstub: parse fixture: %w", err)
	}
	for _, p := range f.Products {
		if _, err := decimal.NewFromString(p.UnitPrice); err != nil {
			return nil, fmt.Errorf("adminstub: product %s has invalid unit_price %q: %w", p.ID, p.UnitPrice, err)
		}
	}
	return &f, nil
}

// ClientRecords converts fixture clients into API records
func (f *Fixture) ClientRecords() []entity.Client {
	out := make([]entity.Client, 0, len(f.Clients))
	for _, c := range f.Clients {
		out = append(out, entity.Client{
			ID:          c.ID,
			ClientID:    c.ClientID,
			ClientName:  c.ClientName,
			CompanyName: c.CompanyName,
			BrandName:   c.BrandName,
		})
	}
	return out
}

// ProductRecords converts fixture products into API records
func (f *Fixture) ProductRecords() []entity.Product {
	out := make([]entity.Product, 0, len(f.Products))
	for _, p := range f.Products {
		out = append(out, entity.Product{
			ID:        p.ID,
			Name:      p.Name,
			UnitPrice: decimal.RequireFromString(p.UnitPrice),
		})
	}
	return out
}

// clientByBillingID finds a client by the identifier printed on invoices
func (f *Fixture) clientByBillingID(id string) (FixtureClient, bool) {
	for _, c := range f.Clients {
		if c.ClientID == id {
			return c, true
		}
	}
	return FixtureClient{}, false
}
