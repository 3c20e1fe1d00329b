package assessment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/framework-scripts/internal/frameworks"
)

var testBuilder = RowBuilder{
	FrameworkSlug: "h-cloud-99",
	AdminURL:      "https://www.digitalmarketplace.service.gov.uk/admin/",
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		onFramework *bool
		want        Category
	}{
		{"on framework", boolPtr(true), Successful},
		{"off framework", boolPtr(false), Failed},
		{"undecided", nil, Discretionary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{SupplierWithCounts: supplier(1, tt.onFramework, completeDeclaration(nil), nil)}
			assert.Equal(t, tt.want, Classify(rec))
		})
	}
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "successful", Successful.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "discretionary", Discretionary.String())
	assert.Equal(t, "category(7)", Category(7).String())
}

func TestSuccessfulRow(t *testing.T) {
	rec := Record{SupplierWithCounts: supplier(4321, boolPtr(true), completeDeclaration(nil), submittedCounts(1))}

	rec, ok := testBuilder.ShouldWrite(Successful, rec)
	assert.True(t, ok)

	row := testBuilder.Row(Successful, rec)
	assert.Equal(t, Columns(Successful), row.Names())
	want := []string{"Supplier generic name", "4321", "Supplier Emplöyee 123", "supplier@example.com"}
	if diff := cmp.Diff(want, row.Values()); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestFailedRow_MandatoryFailures(t *testing.T) {
	rec := Record{
		SupplierWithCounts: supplier(2345, boolPtr(false), completeDeclaration(nil), submittedCounts(1)),
		FailedMandatory:    []string{"Q1 - shouldBeFalseStrict", "Q3 - primaryContactEmail"},
	}

	rec, ok := testBuilder.ShouldWrite(Failed, rec)
	assert.True(t, ok)

	row := testBuilder.Row(Failed, rec)
	assert.Equal(t, Columns(Failed), row.Names())
	want := []string{
		"Supplier generic name",
		"2345",
		"Q1 - shouldBeFalseStrict,Q3 - primaryContactEmail",
		"Supplier Emplöyee 123",
		"supplier@example.com",
		"https://www.digitalmarketplace.service.gov.uk/admin/suppliers/2345/edit/declarations/h-cloud-99",
	}
	if diff := cmp.Diff(want, row.Values()); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestFailedShouldWrite_NoPassedLot(t *testing.T) {
	original := Record{
		SupplierWithCounts: supplier(3456, boolPtr(false), completeDeclaration(nil), submittedCounts(2)),
		FailedMandatory:    []string{},
	}

	rec, ok := testBuilder.ShouldWrite(Failed, original)
	assert.True(t, ok)
	assert.Equal(t, []string{NoPassedLot}, rec.FailedMandatory)
	assert.Empty(t, original.FailedMandatory, "input record must not change")
	assert.Equal(t, NoPassedLot, testBuilder.Row(Failed, rec)[2].Value)
}

func TestFailedShouldWrite_Exclusions(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{
			name: "incomplete declaration",
			record: Record{
				SupplierWithCounts: supplier(1, boolPtr(false), completeDeclaration(nil), submittedCounts(3)),
				FailedMandatory:    []string{Incomplete},
			},
		},
		{
			name: "no submitted or failed services",
			record: Record{
				SupplierWithCounts: supplier(1, boolPtr(false), completeDeclaration(nil), submittedCounts(0)),
			},
		},
		{
			name: "no services at all with mandatory failures",
			record: Record{
				SupplierWithCounts: supplier(1, boolPtr(false), completeDeclaration(nil), nil),
				FailedMandatory:    []string{"Q1 - shouldBeFalseStrict"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := testBuilder.ShouldWrite(Failed, tt.record)
			assert.False(t, ok)
		})
	}
}

func TestFailedShouldWrite_CountsFailedServices(t *testing.T) {
	rec := Record{SupplierWithCounts: supplier(1, boolPtr(false), completeDeclaration(nil), nil)}
	rec.Counts = map[frameworks.LotStatus]int{{Lot: "cloud-hosting", Status: "failed"}: 1}

	_, ok := testBuilder.ShouldWrite(Failed, rec)
	assert.True(t, ok)

	custom := testBuilder
	custom.CompletedStatuses = []string{"submitted"}
	_, ok = custom.ShouldWrite(Failed, rec)
	assert.False(t, ok)
}

func TestDiscretionaryRow(t *testing.T) {
	rec := Record{
		SupplierWithCounts: supplier(1234, nil, completeDeclaration(nil), submittedCounts(1)),
		Discretionary:      []DiscretionaryItem{{Label: "Q0 - shouldBeFalseLax", Answer: true}},
	}

	rec, ok := testBuilder.ShouldWrite(Discretionary, rec)
	assert.True(t, ok)

	row := testBuilder.Row(Discretionary, rec)
	assert.Equal(t, Columns(Discretionary), row.Names())
	want := []string{
		"Supplier generic name",
		"1234",
		`[["Q0 - shouldBeFalseLax",true]]`,
		"sight is somewhat troubled",
		"cannot prepare for every emergency",
		"dog ate homework",
		"Supplier Emplöyee 123",
		"supplier@example.com",
		"https://www.digitalmarketplace.service.gov.uk/admin/suppliers/1234/edit/declarations/h-cloud-99",
	}
	if diff := cmp.Diff(want, row.Values()); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscretionaryRow_EmptyAndMissingFactors(t *testing.T) {
	decl := completeDeclaration(map[string]any{"mitigatingFactors2": nil, "mitigatingFactors3": nil})
	rec := Record{SupplierWithCounts: supplier(1, nil, decl, nil)}

	row := testBuilder.Row(Discretionary, rec)
	assert.Equal(t, "[]", row[2].Value)
	assert.Equal(t, "", row[4].Value)
	assert.Equal(t, "", row[5].Value)
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"supplier_name", "supplier_id", "contact_name", "contact_email"}, Columns(Successful))
	assert.Equal(t, []string{
		"supplier_name", "supplier_id", "failed_mandatory", "contact_name", "contact_email", "admin_link",
	}, Columns(Failed))
	assert.Equal(t, []string{
		"supplier_name", "supplier_id", "failed_discretionary",
		"mitigating factors 1", "mitigating factors 2", "mitigating factors 3",
		"contact_name", "contact_email", "admin_link",
	}, Columns(Discretionary))
}

func TestColumns_ReturnsCopy(t *testing.T) {
	cols := Columns(Successful)
	cols[0] = "changed"
	assert.Equal(t, "supplier_name", Columns(Successful)[0])
}
