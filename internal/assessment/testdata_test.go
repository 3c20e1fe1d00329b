package assessment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/framework-scripts/internal/content"
	"github.com/jonathan/framework-scripts/internal/dataapi"
	"github.com/jonathan/framework-scripts/internal/frameworks"
	"github.com/jonathan/framework-scripts/internal/schemas"
)

const testManifest = `
sections:
  - name: Eligibility
    questions:
      - id: shouldBeFalseLax
        type: boolean
      - id: shouldBeFalseStrict
        type: boolean
  - name: Contact
    questions:
      - id: primaryContact
        type: text
      - id: primaryContactEmail
        type: text
  - name: Mitigating factors
    questions:
      - id: mitigatingFactors
        type: textbox_large
      - id: mitigatingFactors2
        type: textbox_large
      - id: mitigatingFactors3
        type: textbox_large
`

// omnipresent is required by the schema but is not a question, so a
// declaration missing it trips the unexpected field check.
const testSchema = `{
	"$schema": "http://json-schema.org/draft-04/schema#",
	"type": "object",
	"allOf": [{"$ref": "#/definitions/baseline"}],
	"properties": {
		"shouldBeFalseLax": {"enum": [false]}
	},
	"definitions": {
		"baseline": {
			"type": "object",
			"properties": {
				"shouldBeFalseStrict": {"enum": [false]},
				"primaryContactEmail": {"type": "string", "pattern": "@"}
			},
			"required": ["omnipresent"]
		}
	}
}`

func testDeclaration(t *testing.T) *content.Declaration {
	t.Helper()
	decl, err := content.ParseDeclaration([]byte(testManifest))
	require.NoError(t, err)
	return decl
}

func testSchemas(t *testing.T) (definitePass, baseline *schemas.Schema) {
	t.Helper()
	definitePass, err := schemas.Parse(testSchema)
	require.NoError(t, err)
	baseline, err = definitePass.Definition("baseline")
	require.NoError(t, err)
	require.NotNil(t, baseline)
	return definitePass, baseline
}

func boolPtr(b bool) *bool {
	return &b
}

func supplier(id int, onFramework *bool, decl dataapi.Declaration, counts map[frameworks.LotStatus]int) frameworks.SupplierWithCounts {
	return frameworks.SupplierWithCounts{
		SupplierFramework: dataapi.SupplierFramework{
			SupplierID:   id,
			SupplierName: "Supplier generic name",
			OnFramework:  onFramework,
			Declaration:  decl,
		},
		Counts: counts,
	}
}

func completeDeclaration(overrides map[string]any) dataapi.Declaration {
	decl := dataapi.Declaration{
		"status":              "complete",
		"shouldBeFalseLax":    false,
		"shouldBeFalseStrict": false,
		"omnipresent":         "always",
		"primaryContact":      "Supplier Emplöyee 123",
		"primaryContactEmail": "supplier@example.com",
		"mitigatingFactors":   "sight is somewhat troubled",
		"mitigatingFactors2":  "cannot prepare for every emergency",
		"mitigatingFactors3":  "dog ate homework",
	}
	for k, v := range overrides {
		if v == nil {
			delete(decl, k)
			continue
		}
		decl[k] = v
	}
	return decl
}

func submittedCounts(n int) map[frameworks.LotStatus]int {
	return map[frameworks.LotStatus]int{
		{Lot: "cloud-hosting", Status: "submitted"}:     n,
		{Lot: "cloud-hosting", Status: "not-submitted"}: 2,
	}
}
