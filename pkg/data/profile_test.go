package data

import (
	"testing"

	"github.com/mchmarny/motorista/pkg/motorista"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_SaveGetDelete(t *testing.T) {
	db := setupTestDB(t)

	m := &motorista.Motorista{
		ID:     "m-1",
		Nome:   "Maria Silva",
		Email:  "maria@example.com",
		Status: motorista.StatusDocumentosAnalise,
		Documentos: []motorista.Documento{
			{ID: "d-1", TipoDocumento: motorista.DocumentoCNH, Status: motorista.DocumentoStatusPendente},
		},
	}
	require.NoError(t, SaveProfile(db, m))

	got, err := GetProfile(db, "m-1")
	require.NoError(t, err)
	assert.Equal(t, m.Nome, got.Motorista.Nome)
	assert.Equal(t, m.Status, got.Motorista.Status)
	require.Len(t, got.Motorista.Documentos, 1)
	assert.False(t, got.FetchedAt.IsZero())

	m.Email = "novo@example.com"
	require.NoError(t, SaveProfile(db, m))
	got, err = GetProfile(db, "m-1")
	require.NoError(t, err)
	assert.Equal(t, "novo@example.com", got.Motorista.Email)

	require.NoError(t, DeleteProfile(db, "m-1"))
	_, err = GetProfile(db, "m-1")
	assert.ErrorIs(t, err, ErrProfileNotCached)
}

func TestSaveProfile_Invalid(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, SaveProfile(db, nil))
	assert.Error(t, SaveProfile(db, &motorista.Motorista{}))
}

func TestPurge(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SaveProfile(db, &motorista.Motorista{ID: "m-1"}))
	require.NoError(t, SaveActivity(db, &Activity{MotoristaID: "m-1", Action: ActivityDeleteConfirm}))
	require.NoError(t, SaveActivity(db, &Activity{MotoristaID: "m-2", Action: ActivityLogin}))

	require.NoError(t, Purge(db, "m-1"))

	_, err := GetProfile(db, "m-1")
	assert.ErrorIs(t, err, ErrProfileNotCached)

	list, err := ListActivity(db, "", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "m-2", list[0].MotoristaID)

	assert.Error(t, Purge(db, ""))
}
