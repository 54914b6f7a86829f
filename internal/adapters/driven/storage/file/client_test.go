package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

const businessYAML = `client_type: business
legal_name: Northern Maple Trading Ltd.
incorporation_date: "2024-06-01"
countries_of_operation:
  - Canada
  - Nigeria
beneficial_owners:
  - full_name: Ada Obi
    ownership_percentage: 60
    citizenship: Nigeria
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadClient_YAML(t *testing.T) {
	client, err := LoadClient(writeFile(t, "maple.yaml", businessYAML))
	require.NoError(t, err)

	assert.Equal(t, domain.ClientTypeBusiness, client.Type())
	assert.Equal(t, "northern_maple_trading_ltd", client.ID())
	assert.Equal(t, []string{"Canada", "Nigeria"}, client.Business.CountriesOfOperation)
	require.Len(t, client.BeneficialOwners(), 1)
	assert.InDelta(t, 60, client.BeneficialOwners()[0].OwnershipPercentage, 0.001)
}

func TestLoadClient_JSON(t *testing.T) {
	path := writeFile(t, "jane.json", `{"full_name": "Jane Doe", "citizenship": "Canada", "us_person": true}`)
	client, err := LoadClient(path)
	require.NoError(t, err)

	assert.Equal(t, domain.ClientTypeIndividual, client.Type())
	assert.True(t, client.Individual.USPerson)
}

func TestLoadClient_Invalid(t *testing.T) {
	_, err := LoadClient(writeFile(t, "empty.json", `{"citizenship": "Canada"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = LoadClient(writeFile(t, "bad.yaml", "legal_name: [unterminated"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = LoadClient(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDecodeClient_UnsupportedExtension(t *testing.T) {
	_, err := DecodeClient([]byte("x"), ".csv")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIsClientFile(t *testing.T) {
	assert.True(t, IsClientFile("a/b/c.YAML"))
	assert.True(t, IsClientFile("c.json"))
	assert.False(t, IsClientFile("c.json.tmp"))
	assert.False(t, IsClientFile("notes.md"))
}
