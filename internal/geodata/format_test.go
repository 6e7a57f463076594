package geodata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geodata-api/internal/geodata"
)

func Test_ParseLanguage(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]geodata.Language{
		"":        geodata.Local,
		"thai":    geodata.Local,
		"TH":      geodata.Local,
		"local":   geodata.Local,
		"english": geodata.English,
		" en ":    geodata.English,
	} {
		got, err := geodata.ParseLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := geodata.ParseLanguage("lao")
	require.Error(t, err)
}

func Test_ParseFormat_And_Dataset(t *testing.T) {
	t.Parallel()

	f, err := geodata.ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, geodata.Tabular, f)

	f, err = geodata.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, geodata.Structured, f)

	_, err = geodata.ParseFormat("xml")
	require.Error(t, err)

	ds, err := geodata.ParseDataset("sub-districts")
	require.NoError(t, err)
	assert.Equal(t, geodata.SubDistricts, ds)
	assert.Equal(t, "sub_districts", ds.String())

	_, err = geodata.ParseDataset("villages")
	require.Error(t, err)
}
