package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

func ev(state entity.EndorsementState, minutes int) *entity.EndorsementEvent {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &entity.EndorsementEvent{State: state, Date: base.Add(time.Duration(minutes) * time.Minute)}
}

func TestSummarizeEndorsement_SinEventos(t *testing.T) {
	s := entity.SummarizeEndorsement(nil)
	assert.Equal(t, entity.EndorsementStateUnset, s.State)
	assert.Nil(t, s.LastSent)
}

func TestSummarizeEndorsement_AverbadoAunqueUltimoSeaError(t *testing.T) {
	events := []*entity.EndorsementEvent{
		ev(entity.EndorsementStateError, 0),
		ev(entity.EndorsementStateEndorsed, 5),
		ev(entity.EndorsementStateError, 10),
	}
	s := entity.SummarizeEndorsement(events)
	assert.Equal(t, entity.EndorsementStateEndorsed, s.State)
	require.NotNil(t, s.LastSent)
	assert.Equal(t, events[2].Date, *s.LastSent)
}

func TestSummarizeEndorsement_CancelPrevaleceSobreAverbado(t *testing.T) {
	events := []*entity.EndorsementEvent{
		ev(entity.EndorsementStateCancel, 20),
		ev(entity.EndorsementStateEndorsed, 5),
	}
	s := entity.SummarizeEndorsement(events)
	assert.Equal(t, entity.EndorsementStateCancel, s.State)
}

func TestSummarizeEndorsement_SoloErrores_TomaElMasReciente(t *testing.T) {
	s := entity.SummarizeEndorsement([]*entity.EndorsementEvent{ev(entity.EndorsementStateError, 1)})
	assert.Equal(t, entity.EndorsementStateError, s.State)
}

func TestCompany_SeleccionDeCredencialesPorAmbiente(t *testing.T) {
	c := &entity.Company{
		Dominio: entity.DominioSettings{
			ClientID: "T", ClientSecret: "S",
			ProductionIntegrationKey: "PK", HomologationIntegrationKey: "HK",
		},
		NDD: entity.NDDSettings{
			ProductionEmail: "prod@x", ProductionPassword: "p1",
			HomologationEmail: "hom@x", HomologationPassword: "p2",
		},
	}

	// sin ambiente configurado se usa homologación
	assert.Equal(t, "HK", c.DominioIntegrationKey())
	assert.Equal(t, "hom@x", c.NDDCredentials().Email)

	c.Dominio.Environment = entity.EnvironmentProduction
	c.NDD.Environment = entity.EnvironmentProduction
	assert.Equal(t, "PK", c.DominioIntegrationKey())
	assert.Equal(t, entity.LoginCredentials{Email: "prod@x", Password: "p1"}, c.NDDCredentials())
	assert.Equal(t, entity.ClientCredentials{ClientID: "T", ClientSecret: "S"}, c.DominioCredentials())
	assert.True(t, c.HasIntegration(entity.IntegrationDominio))
	assert.True(t, c.HasIntegration(entity.IntegrationNDD))
	assert.False(t, c.HasIntegration("otra"))
}
