package dataapi

import (
	"encoding/json"
	"strings"
)

// Lot is a category of service within a framework.
type Lot struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Framework is a procurement framework suppliers apply to.
type Framework struct {
	ID                        int            `json:"id"`
	Slug                      string         `json:"slug"`
	Name                      string         `json:"name"`
	Status                    string         `json:"status"`
	ApplicationsCloseAtUTC    string         `json:"applicationsCloseAtUTC"`
	Lots                      []Lot          `json:"lots"`
	FrameworkAgreementDetails map[string]any `json:"frameworkAgreementDetails"`
}

// LotSlugs returns the framework's lot slugs in API order.
func (f *Framework) LotSlugs() []string {
	slugs := make([]string, 0, len(f.Lots))
	for _, lot := range f.Lots {
		slugs = append(slugs, lot.Slug)
	}
	return slugs
}

// LotNames returns the framework's lot names in API order.
func (f *Framework) LotNames() []string {
	names := make([]string, 0, len(f.Lots))
	for _, lot := range f.Lots {
		names = append(names, lot.Name)
	}
	return names
}

// Declaration holds a supplier's declaration answers, including its "status".
// The API sends an empty string for suppliers that never started one; that
// decodes to an empty declaration.
type Declaration map[string]any

// UnmarshalJSON accepts an object, null or a string.
func (d *Declaration) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || strings.HasPrefix(trimmed, `"`) {
		*d = Declaration{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*d = m
	return nil
}

// Status returns the declaration status, or "" when unset.
func (d Declaration) Status() string {
	return d.String("status")
}

// String returns the answer for key as text. Missing and null answers are "".
func (d Declaration) String(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// SupplierFramework is a supplier's application to one framework.
type SupplierFramework struct {
	SupplierID                         int         `json:"supplierId"`
	SupplierName                       string      `json:"supplierName"`
	FrameworkSlug                      string      `json:"frameworkSlug"`
	OnFramework                        *bool       `json:"onFramework"`
	Declaration                        Declaration `json:"declaration"`
	ApplicationCompanyDetailsConfirmed bool        `json:"applicationCompanyDetailsConfirmed"`
	AgreementStatus                    string      `json:"agreementStatus,omitempty"`
}

// DraftService is a service a supplier drafted while applying to a framework.
type DraftService struct {
	ID      int    `json:"id"`
	Lot     string `json:"lot"`
	LotSlug string `json:"lotSlug"`
	Status  string `json:"status"`
}

// LotKey returns the lot slug, falling back to the lot field.
func (s DraftService) LotKey() string {
	if s.LotSlug != "" {
		return s.LotSlug
	}
	return s.Lot
}

// Service is a published service.
type Service struct {
	ID            string `json:"id"`
	SupplierID    int    `json:"supplierId"`
	SupplierName  string `json:"supplierName"`
	FrameworkSlug string `json:"frameworkSlug"`
	Lot           string `json:"lot"`
	LotName       string `json:"lotName"`
	Status        string `json:"status"`
}

// User is a supplier user account.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
	Active       bool   `json:"active"`
	Role         string `json:"role"`
}
