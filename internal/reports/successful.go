package reports

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/framework-scripts/internal/dataapi"
)

// SuccessfulFileName names the successful suppliers CSV.
func SuccessfulFileName(frameworkSlug string) string {
	return frameworkSlug + "-all-successful-suppliers.csv"
}

type supplierLots struct {
	id   int
	name string
	lots map[string]bool
}

// SuccessfulRows lists every supplier with a published service and marks the
// lots they have services on. A published service is taken to mean the
// application succeeded. Rows are sorted by name, ignoring case.
func SuccessfulRows(services []dataapi.Service, lotNames []string) [][]string {
	bySupplier := make(map[int]*supplierLots)
	for _, s := range services {
		sl, ok := bySupplier[s.SupplierID]
		if !ok {
			sl = &supplierLots{id: s.SupplierID, name: s.SupplierName, lots: make(map[string]bool)}
			bySupplier[s.SupplierID] = sl
		}
		sl.lots[s.LotName] = true
	}

	suppliers := make([]*supplierLots, 0, len(bySupplier))
	for _, sl := range bySupplier {
		suppliers = append(suppliers, sl)
	}
	sort.Slice(suppliers, func(i, j int) bool {
		a, b := strings.ToLower(suppliers[i].name), strings.ToLower(suppliers[j].name)
		if a != b {
			return a < b
		}
		return suppliers[i].id < suppliers[j].id
	})

	rows := make([][]string, 0, len(suppliers))
	for _, sl := range suppliers {
		row := []string{strconv.Itoa(sl.id), sl.name}
		for _, lot := range lotNames {
			if sl.lots[lot] {
				row = append(row, "Yes")
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteSuccessful writes the successful suppliers CSV.
func WriteSuccessful(w io.Writer, services []dataapi.Service, lotNames []string) error {
	header := append([]string{"Supplier ID", "Supplier name"}, lotNames...)
	return writeAll(w, header, SuccessfulRows(services, lotNames))
}
