// Package agreements renders framework agreement signature pages for
// successful suppliers.
package agreements

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jonathan/framework-scripts/internal/dataapi"
	"github.com/jonathan/framework-scripts/internal/frameworks"
)

// FrameworkDetails are the per-framework values printed on every page.
type FrameworkDetails struct {
	FrameworkName             string            `json:"frameworkName"`
	ContractNoticeNumber      string            `json:"contractNoticeNumber"`
	FrameworkAgreementVersion string            `json:"frameworkAgreementVersion"`
	FrameworkExtensionLength  string            `json:"frameworkExtensionLength"`
	FrameworkRefDate          string            `json:"frameworkRefDate"`
	FrameworkURL              string            `json:"frameworkURL"`
	LotDescriptions           map[string]string `json:"lotDescriptions"`
	LotOrder                  []string          `json:"lotOrder"`
	PageTotal                 int               `json:"pageTotal"`
	SignaturePageNumber       int               `json:"signaturePageNumber"`
}

// DetailsFromFramework reads frameworkAgreementDetails from the API record.
func DetailsFromFramework(fw *dataapi.Framework) (FrameworkDetails, error) {
	var details FrameworkDetails
	if len(fw.FrameworkAgreementDetails) == 0 {
		return details, fmt.Errorf("framework %s has no agreement details", fw.Slug)
	}
	raw, err := json.Marshal(fw.FrameworkAgreementDetails)
	if err != nil {
		return details, err
	}
	if err := json.Unmarshal(raw, &details); err != nil {
		return details, fmt.Errorf("invalid agreement details for %s: %w", fw.Slug, err)
	}
	details.FrameworkName = fw.Name
	if len(details.LotOrder) == 0 {
		details.LotOrder = fw.LotSlugs()
	}
	return details, nil
}

// SignaturePage is one supplier's counterpart signature page.
type SignaturePage struct {
	SupplierID            int
	RegisteredName        string
	CompanyNumber         string
	RegisteredAddress     []string
	CountryOfRegistration string
	ContactName           string
	ContactEmail          string
	Lots                  []string
}

// FileStem is the page's file name without an extension.
func (p SignaturePage) FileStem() string {
	return fmt.Sprintf("%d-signature-page", p.SupplierID)
}

// BuildPages selects successful suppliers with a complete declaration and
// at least one submitted service, in supplier order.
func BuildPages(records []frameworks.SupplierWithCounts, details FrameworkDetails) []SignaturePage {
	var pages []SignaturePage
	for _, r := range records {
		if r.OnFramework == nil || !*r.OnFramework {
			continue
		}
		if r.Declaration.Status() != "complete" {
			continue
		}
		lots := lotsWithSubmittedServices(r, details)
		if len(lots) == 0 {
			continue
		}

		d := r.Declaration
		var address []string
		for _, key := range []string{"supplierRegisteredBuilding", "supplierRegisteredTown", "supplierRegisteredPostcode"} {
			if v := strings.TrimSpace(d.String(key)); v != "" {
				address = append(address, v)
			}
		}

		pages = append(pages, SignaturePage{
			SupplierID:            r.SupplierID,
			RegisteredName:        d.String("supplierRegisteredName"),
			CompanyNumber:         d.String("supplierCompanyRegistrationNumber"),
			RegisteredAddress:     address,
			CountryOfRegistration: Country(d.String("supplierRegisteredCountry")),
			ContactName:           d.String("primaryContact"),
			ContactEmail:          d.String("primaryContactEmail"),
			Lots:                  lots,
		})
	}
	return pages
}

func lotsWithSubmittedServices(r frameworks.SupplierWithCounts, details FrameworkDetails) []string {
	var lots []string
	for _, slug := range details.LotOrder {
		if r.LotCount(slug, "submitted") == 0 {
			continue
		}
		description := details.LotDescriptions[slug]
		if description == "" {
			description = slug
		}
		if !slices.Contains(lots, description) {
			lots = append(lots, description)
		}
	}
	return lots
}

// Country turns a register value such as "country:GB" into "GB".
func Country(value string) string {
	_, code, found := strings.Cut(value, ":")
	if !found {
		return value
	}
	return code
}
