package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rotcurve/internal/archive"
	"github.com/agenthands/rotcurve/internal/archive/archivetest"
	"github.com/agenthands/rotcurve/internal/core/table"
	"github.com/agenthands/rotcurve/internal/metrics"
)

const fixedRows = "0.5 40 2 5 30 0\n1.0 55 2 6 41 0\n1.5 63 3 7 45 1\n"

func newCatalog(workers int) *Catalog {
	reader := archive.NewReader(archive.Options{Extensions: []string{".csv", ".dat", ".txt"}})
	return New(reader, table.NewParser(table.DefaultAliases()), Options{Workers: workers})
}

func TestLoadPartialFailure(t *testing.T) {
	data := archivetest.Zip(t,
		archivetest.File{Name: "data/NGC1003_rotmod.dat", Body: fixedRows},
		archivetest.File{Name: "data/DDO154_rotmod.dat", Body: fixedRows},
		archivetest.File{Name: "data/UGC128.csv", Body: "r,vobs\n1.5,100\n3.0,150"},
		archivetest.File{Name: "data/broken_rotmod.dat", Body: "radius,flux\n1,2\n3,4"},
	)

	c := newCatalog(3)
	report, err := c.Load(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Members)
	assert.Equal(t, 3, report.Count)
	assert.Equal(t, []string{"DDO154", "NGC1003", "UGC128"}, report.Galaxies)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "data/broken_rotmod.dat", report.Errors[0].Member)
	assert.Contains(t, report.Errors[0].Message, "missing vobs column")

	assert.Equal(t, []string{"DDO154", "NGC1003", "UGC128"}, c.List())
	assert.Equal(t, 3, c.Len())

	e, err := c.Get("NGC1003")
	require.NoError(t, err)
	assert.Equal(t, "data/NGC1003_rotmod.dat", e.Member)
	assert.Len(t, e.Rows, 3)
	assert.Equal(t, 0.5, e.Rows[0].RKpc)
}

func TestLoadCountsDroppedLines(t *testing.T) {
	kept := testutil.ToFloat64(metrics.Rows.WithLabelValues("kept"))
	dropped := testutil.ToFloat64(metrics.Rows.WithLabelValues("dropped"))

	_, err := newCatalog(1).Load(context.Background(), archivetest.Zip(t,
		archivetest.File{Name: "noisy_rotmod.dat", Body: "1 50\nx 50\n2 y\nshort\n3 60"}))
	require.NoError(t, err)

	assert.Equal(t, kept+2, testutil.ToFloat64(metrics.Rows.WithLabelValues("kept")))
	assert.Equal(t, dropped+3, testutil.ToFloat64(metrics.Rows.WithLabelValues("dropped")))
}

func TestLoadSequentialAndParallelAgree(t *testing.T) {
	files := []archivetest.File{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		files = append(files, archivetest.File{Name: name + "_rotmod.dat", Body: fixedRows})
	}
	files = append(files, archivetest.File{Name: "z_rotmod.dat", Body: "# nothing"})
	data := archivetest.Zip(t, files...)

	seq, err := newCatalog(1).Load(context.Background(), data)
	require.NoError(t, err)
	par, err := newCatalog(8).Load(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestLoadReplacesPreviousCatalog(t *testing.T) {
	c := newCatalog(2)
	_, err := c.Load(context.Background(), archivetest.Zip(t,
		archivetest.File{Name: "first_rotmod.dat", Body: fixedRows}))
	require.NoError(t, err)

	_, err = c.Load(context.Background(), archivetest.Zip(t,
		archivetest.File{Name: "second_rotmod.dat", Body: fixedRows}))
	require.NoError(t, err)

	assert.Equal(t, []string{"second"}, c.List())
	_, err = c.Get("first")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadBadArchiveKeepsState(t *testing.T) {
	c := newCatalog(2)
	_, err := c.Load(context.Background(), archivetest.Zip(t,
		archivetest.File{Name: "kept_rotmod.dat", Body: fixedRows}))
	require.NoError(t, err)

	_, err = c.Load(context.Background(), []byte("PK but not really"))
	var fe *archive.FormatError
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.Equal(t, []string{"kept"}, c.List())
}

func TestLoadCancelledKeepsState(t *testing.T) {
	c := newCatalog(2)
	_, err := c.Load(context.Background(), archivetest.Zip(t,
		archivetest.File{Name: "kept_rotmod.dat", Body: fixedRows}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Load(ctx, archivetest.Zip(t,
		archivetest.File{Name: "other_rotmod.dat", Body: fixedRows}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"kept"}, c.List())
}

func TestLoadDuplicateIdentifierLastWins(t *testing.T) {
	data := archivetest.Zip(t,
		archivetest.File{Name: "a/NGC1003_rotmod.dat", Body: "1 10\n2 20"},
		archivetest.File{Name: "b/NGC1003.csv", Body: "r,vobs\n1,11\n2,21\n3,31"},
	)
	c := newCatalog(4)
	report, err := c.Load(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count)

	e, err := c.Get("NGC1003")
	require.NoError(t, err)
	assert.Equal(t, "b/NGC1003.csv", e.Member)
	assert.Len(t, e.Rows, 3)
}

func TestEmptyArchiveLoadsZeroGalaxies(t *testing.T) {
	c := newCatalog(2)
	report, err := c.Load(context.Background(), archivetest.Zip(t, archivetest.File{Name: "x.png", Body: "p"}))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Count)
	assert.Empty(t, report.Errors)
	assert.Empty(t, c.ExportAll())
}

func TestGetCaseInsensitive(t *testing.T) {
	c := newCatalog(1)
	_, err := c.Load(context.Background(), archivetest.Zip(t,
		archivetest.File{Name: "NGC1003_rotmod.dat", Body: fixedRows}))
	require.NoError(t, err)

	e, err := c.Get("ngc1003")
	require.NoError(t, err)
	assert.Equal(t, "NGC1003", e.Name)

	_, err = c.Get("M31")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportAllSorted(t *testing.T) {
	c := newCatalog(2)
	_, err := c.Load(context.Background(), archivetest.Zip(t,
		archivetest.File{Name: "zeta_rotmod.dat", Body: fixedRows},
		archivetest.File{Name: "Alpha_rotmod.dat", Body: fixedRows},
		archivetest.File{Name: "beta_rotmod.dat", Body: fixedRows},
	))
	require.NoError(t, err)

	var got []string
	for _, e := range c.ExportAll() {
		got = append(got, e.Name)
		assert.Len(t, e.Rows, 3)
	}
	assert.Equal(t, []string{"Alpha", "beta", "zeta"}, got)
}
