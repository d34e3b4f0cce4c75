package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"glmdesign/domain/core"
	"glmdesign/domain/design"
	"glmdesign/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTableSourceLoadsCSV(t *testing.T) {
	dir := t.TempDir()
	cov := writeFile(t, dir, "cov.csv", "subject,age,iq\ns1,20,100\ns2, 30,110\n\ns3,40,95\n")
	resp := writeFile(t, dir, "resp.csv", "subject,v1,v2\ns1,1,2\ns2,3,4\ns3,5,6\n")

	src := NewTableSource(DefaultExcelConfig(), testutil.NewTestLogger(t))
	m, err := src.LoadModel(context.Background(), cov, resp)
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2", "s3"}, m.LabelsX)
	assert.Equal(t, []string{"age", "iq"}, m.LabelsY)
	assert.Equal(t, [][]float64{{20, 100}, {30, 110}, {40, 95}}, m.X.ToRows())
	assert.Equal(t, []float64{2, 4, 6}, m.Y.Col(1))
	require.NoError(t, m.Validate())
}

func TestTableSourceErrors(t *testing.T) {
	dir := t.TempDir()
	src := NewTableSource(DefaultExcelConfig(), testutil.NewTestLogger(t))
	ctx := context.Background()

	t.Run("non numeric cell", func(t *testing.T) {
		cov := writeFile(t, dir, "bad.csv", "subject,age\ns1,twenty\n")
		_, err := src.LoadModel(ctx, cov, "")
		assert.ErrorIs(t, err, core.ErrConfig)
	})

	t.Run("non finite cells", func(t *testing.T) {
		for i, cell := range []string{"NaN", "Inf", "-inf"} {
			cov := writeFile(t, dir, fmt.Sprintf("nonfinite%d.csv", i), "subject,age\ns1,1\ns2,"+cell+"\n")
			_, err := src.LoadModel(ctx, cov, "")
			assert.ErrorIs(t, err, core.ErrConfig, cell)
		}
	})

	t.Run("response rows out of order", func(t *testing.T) {
		cov := writeFile(t, dir, "cov.csv", "subject,age\ns1,1\ns2,2\n")
		resp := writeFile(t, dir, "resp.csv", "subject,v\ns2,1\ns1,2\n")
		_, err := src.LoadModel(ctx, cov, resp)
		assert.ErrorIs(t, err, core.ErrShapeMismatch)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := src.LoadModel(ctx, filepath.Join(dir, "nope.csv"), "")
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := src.LoadModel(ctx, "", "")
		assert.ErrorIs(t, err, core.ErrConfig)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		cov := writeFile(t, dir, "ok.csv", "subject,age\ns1,1\n")
		_, err := src.LoadModel(cctx, cov, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTableSourceOnlyLabels(t *testing.T) {
	cov := writeFile(t, t.TempDir(), "labels.csv", "subject\ns1\ns2\n")
	m, err := NewTableSource(DefaultExcelConfig(), nil).LoadModel(context.Background(), cov, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, m.LabelsX)
	assert.Empty(t, m.LabelsY)
	assert.Equal(t, 2, m.X.Rows())
	assert.Equal(t, 0, m.X.Cols())
}

func preparedModel(t *testing.T) design.Model {
	t.Helper()
	x, err := design.FromRows([][]float64{{1, -0.5}, {1, 0.5}})
	require.NoError(t, err)
	y, err := design.FromRows([][]float64{{3, 4}, {5, 6}})
	require.NoError(t, err)
	return design.Model{
		X:       x,
		Y:       y,
		LabelsX: []string{"s1", "s2"},
		LabelsY: []string{"intercept", "age"},
		C:       []float64{0, 1},
	}
}

func TestDesignWriterWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.xlsx")
	w := NewDesignWriter(DefaultExcelConfig(), testutil.NewTestLogger(t))
	require.NoError(t, w.WriteDesign(context.Background(), path, preparedModel(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetX, SheetY, SheetC}, f.GetSheetList())

	rows, err := f.GetRows(SheetC)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "weight"}, {"intercept", "0"}, {"age", "1"}}, rows)

	// the X sheet reads back as a model
	src := NewTableSource(ExcelConfig{Sheet: SheetX}, nil)
	m, err := src.LoadModel(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"intercept", "age"}, m.LabelsY)
	assert.Equal(t, [][]float64{{1, -0.5}, {1, 0.5}}, m.X.ToRows())
}

func TestDesignWriterCSVDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	m := preparedModel(t)
	m.Y = design.Matrix{}

	w := NewDesignWriter(ExcelConfig{}, nil)
	require.NoError(t, w.WriteDesign(context.Background(), dir, m))

	x, err := os.ReadFile(filepath.Join(dir, "X.csv"))
	require.NoError(t, err)
	assert.Equal(t, "label,intercept,age\ns1,1,-0.5\ns2,1,0.5\n", string(x))

	_, err = os.Stat(filepath.Join(dir, "Y.csv"))
	assert.True(t, os.IsNotExist(err))

	c, err := os.ReadFile(filepath.Join(dir, "C.csv"))
	require.NoError(t, err)
	assert.Equal(t, "name,weight\nintercept,0\nage,1\n", string(c))
}
