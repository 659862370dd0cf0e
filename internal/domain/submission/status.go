package submission

import "github.com/jhoicas/fiscal-bridge/internal/domain/entity"

// Códigos de apiStatus devueltos por Dominio.
const (
	CodeStored        = "SA2"  // archivo almacenado
	CodeAlreadyExists = "EA10" // archivo ya existente en Dominio
)

// Outcome clasificación de un código de estado.
type Outcome int

const (
	OutcomeStored Outcome = iota
	OutcomeAlreadyExists
	OutcomeRejected
)

// Interpret traduce el código de apiStatus al estado local.
// SA2 y EA10 quedan como stored; cualquier otro código es error.
func Interpret(code string) (entity.DominioState, Outcome) {
	switch code {
	case CodeStored:
		return entity.DominioStateStored, OutcomeStored
	case CodeAlreadyExists:
		return entity.DominioStateStored, OutcomeAlreadyExists
	default:
		return entity.DominioStateError, OutcomeRejected
	}
}

// Apply construye el estado a persistir a partir de la respuesta de Dominio.
func Apply(rec Record, transactionID, code, message string) (entity.DominioStatus, Outcome) {
	state, outcome := Interpret(code)
	st := entity.DominioStatus{
		State:         state,
		TransactionID: transactionID,
		Code:          code,
		Message:       message,
	}
	rec.SetStatus(st)
	return st, outcome
}
