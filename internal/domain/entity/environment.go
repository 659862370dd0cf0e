package entity

// Environment ambiente de una integración externa.
type Environment string

const (
	EnvironmentProduction   Environment = "1"
	EnvironmentHomologation Environment = "2"
)

// Normalize devuelve homologación para cualquier valor distinto de producción.
func (e Environment) Normalize() Environment {
	if e == EnvironmentProduction {
		return EnvironmentProduction
	}
	return EnvironmentHomologation
}

func (e Environment) String() string {
	if e.Normalize() == EnvironmentProduction {
		return "producción"
	}
	return "homologación"
}
