package submission

import (
	"sort"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
)

// CategoryPayments nombre de la categoría de líneas de pago en el cierre.
const CategoryPayments = "payments"

// CheckReadyToClose verifica que todos los registros de cada categoría estén
// almacenados en Dominio (stored o duplicated). Devuelve ClosingBlockedError con la
// cantidad pendiente por categoría, en orden alfabético.
func CheckReadyToClose(categories map[string][]Record) error {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var pending []domain.PendingCategory
	for _, name := range names {
		if n := CountNotStored(categories[name]); n > 0 {
			pending = append(pending, domain.PendingCategory{Category: name, Count: n})
		}
	}
	if len(pending) > 0 {
		return &domain.ClosingBlockedError{Pending: pending}
	}
	return nil
}

// CountNotStored cantidad de registros que todavía no están en Dominio.
func CountNotStored(records []Record) int {
	n := 0
	for _, r := range records {
		if !r.Status().State.IsTerminal() {
			n++
		}
	}
	return n
}
