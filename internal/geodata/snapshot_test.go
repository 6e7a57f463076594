package geodata_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geodata-api/internal/geodata"
)

func Test_Snapshot_Answers_Like_Repository(t *testing.T) {
	t.Parallel()

	repo := geodata.New(fixtureDir)
	snap, err := geodata.LoadSnapshot(repo)
	require.NoError(t, err)
	assert.False(t, snap.BuiltAt.IsZero())

	for _, src := range []geodata.Source{snap} {
		for _, f := range []geodata.Format{geodata.Structured, geodata.Tabular} {
			want, err := repo.LoadProvinces(f)
			require.NoError(t, err)
			got, err := src.LoadProvinces(f)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("provinces %s (-repo +snap):\n%s", f, diff)
			}
		}

		wantP, wantOK, err := repo.ProvinceByCode("50")
		require.NoError(t, err)
		gotP, gotOK, err := src.ProvinceByCode("50")
		require.NoError(t, err)
		assert.Equal(t, wantOK, gotOK)
		assert.Equal(t, wantP, gotP)

		wantS, err := repo.SearchProvincesByName("chiang", geodata.English)
		require.NoError(t, err)
		gotS, err := src.SearchProvincesByName("chiang", geodata.English)
		require.NoError(t, err)
		if diff := cmp.Diff(wantS, gotS); diff != "" {
			t.Fatalf("search (-repo +snap):\n%s", diff)
		}

		wantD, err := repo.DistrictsByProvinceID(3)
		require.NoError(t, err)
		gotD, err := src.DistrictsByProvinceID(3)
		require.NoError(t, err)
		if diff := cmp.Diff(wantD, gotD); diff != "" {
			t.Fatalf("districts (-repo +snap):\n%s", diff)
		}

		wantStats, err := repo.Statistics()
		require.NoError(t, err)
		gotStats, err := src.Statistics()
		require.NoError(t, err)
		assert.Equal(t, wantStats, gotStats)

		wantH, _, err := repo.ProvinceHierarchy(1)
		require.NoError(t, err)
		gotH, _, err := src.ProvinceHierarchy(1)
		require.NoError(t, err)
		if diff := cmp.Diff(wantH, gotH); diff != "" {
			t.Fatalf("hierarchy (-repo +snap):\n%s", diff)
		}
	}
}

func Test_Snapshot_Treats_Unknown_Format_As_Structured(t *testing.T) {
	t.Parallel()

	snap, err := geodata.LoadSnapshot(geodata.New(fixtureDir))
	require.NoError(t, err)

	want, err := snap.LoadProvinces(geodata.Structured)
	require.NoError(t, err)
	got, err := snap.LoadProvinces(geodata.Format(2))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ds, err := snap.LoadDistricts(geodata.Format(-1))
	require.NoError(t, err)
	assert.Len(t, ds, 7)

	sds, err := snap.LoadSubDistricts(geodata.Format(9))
	require.NoError(t, err)
	assert.Len(t, sds, 8)
}

func Test_Snapshot_Results_Are_Copies(t *testing.T) {
	t.Parallel()

	snap, err := geodata.LoadSnapshot(geodata.New(fixtureDir))
	require.NoError(t, err)

	ps, err := snap.LoadProvinces(geodata.Structured)
	require.NoError(t, err)
	ps[0].NameEnglish = "changed"

	recs, err := snap.DistrictsByProvinceID(1)
	require.NoError(t, err)
	recs[0]["DISTRICT_ENGLISH"] = "changed"

	p, ok, err := snap.ProvinceByCode("10")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bangkok", p.NameEnglish)

	again, err := snap.DistrictsByProvinceID(1)
	require.NoError(t, err)
	assert.Equal(t, "Khet Phra Nakhon", again[0]["DISTRICT_ENGLISH"])
}

func Test_LoadSnapshot_Fails_Without_Partial_Result(t *testing.T) {
	t.Parallel()

	dir := copyFixture(t)
	writeFile(t, dir, "csv/sub_districts.csv", "SUB_DISTRICT_ID,DISTRICT_ID\n")

	snap, err := geodata.LoadSnapshot(geodata.New(dir))
	require.ErrorIs(t, err, geodata.ErrParse)
	assert.Nil(t, snap)
}

func Test_Dynamic_Reload_Swaps_Snapshot(t *testing.T) {
	t.Parallel()

	dir := copyFixture(t)
	d, err := geodata.NewDynamic(geodata.New(dir))
	require.NoError(t, err)

	stats, err := d.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalProvinces)

	writeFile(t, dir, "csv/provinces.csv", provincesHeader+"1,10,กรุงเทพมหานคร,Bangkok\n")
	writeFile(t, dir, "json/provinces.json",
		`{"provinces": [{"PROVINCE_ID": 1, "CODE": "10", "PROVINCE_THAI": "กรุงเทพมหานคร", "PROVINCE_ENGLISH": "Bangkok"}]}`)

	// unchanged until reload
	stats, err = d.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalProvinces)

	require.NoError(t, d.Reload())

	stats, err = d.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProvinces)

	_, ok, err := d.ProvinceByCode("50")
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_Dynamic_Keeps_Old_Snapshot_When_Reload_Fails(t *testing.T) {
	t.Parallel()

	dir := copyFixture(t)
	d, err := geodata.NewDynamic(geodata.New(dir))
	require.NoError(t, err)

	before := d.Load()

	writeFile(t, dir, "json/districts.json", `{"districts": [`)
	require.ErrorIs(t, d.Reload(), geodata.ErrParse)
	assert.Same(t, before, d.Load())

	recs, err := d.DistrictsByProvinceID(1)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func Test_NewDynamic_Fails_When_Dataset_Missing(t *testing.T) {
	t.Parallel()

	d, err := geodata.NewDynamic(geodata.New(t.TempDir()))
	require.ErrorIs(t, err, geodata.ErrNotFound)
	assert.Nil(t, d)
}
