package entity

// DominioState estado de un registro en Dominio.
type DominioState string

const (
	DominioStateUnset      DominioState = ""
	DominioStateStored     DominioState = "stored"
	DominioStateDuplicated DominioState = "duplicated"
	DominioStateError      DominioState = "error"
)

// IsTerminal indica que el registro ya está en Dominio y no debe reenviarse.
func (s DominioState) IsTerminal() bool {
	return s == DominioStateStored || s == DominioStateDuplicated
}

// DominioStatus campos de integración que el servicio escribe sobre cada registro.
type DominioStatus struct {
	State         DominioState
	TransactionID string // id devuelto por Dominio al recibir el archivo
	Code          string // apiStatus.code (SA2, EA10, ...)
	Message       string // apiStatus.message
}
