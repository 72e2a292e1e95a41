package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

var (
	txt  = dataset.Text
	miss = dataset.Missing
)

func sample() *dataset.Dataset {
	return dataset.MustNew(
		dataset.MustColumn("id", dataset.KindInt, dataset.Int(1), dataset.Int(2), dataset.Int(3), dataset.Int(4)),
		dataset.MustColumn("OpSys", dataset.KindText, txt("b"), txt("a"), txt("a"), txt("c")),
		dataset.MustColumn("Company", dataset.KindText, txt("HP"), miss(), txt("Dell"), txt("HP")),
		dataset.MustColumn("Price", dataset.KindFloat, dataset.Float(1), dataset.Float(2), dataset.Float(3), dataset.Float(4)),
	)
}

func ints(t *testing.T, c *dataset.Column) []int64 {
	t.Helper()
	out := make([]int64, c.Len())
	for i := range out {
		n, ok := c.Value(i).AsInt()
		require.True(t, ok)
		out[i] = n
	}
	return out
}

func TestLabelEncodeSortedCodes(t *testing.T) {
	out, err := LabelEncode(sample(), []string{"OpSys"})
	require.NoError(t, err)
	c, _ := out.Column("OpSys")
	assert.Equal(t, dataset.KindInt, c.Kind())
	assert.Equal(t, []int64{1, 0, 0, 2}, ints(t, c))
	assert.Equal(t, []string{"id", "OpSys", "Company", "Price"}, out.Names())
}

func TestLabelEncodeMissingGetsCode(t *testing.T) {
	out, err := LabelEncode(sample(), []string{"Company"})
	require.NoError(t, err)
	c, _ := out.Column("Company")
	// Dell=0, HP=1, nan=2
	assert.Equal(t, []int64{1, 2, 0, 1}, ints(t, c))
	assert.Equal(t, 0, c.MissingCount())
}

func TestOneHotIndicators(t *testing.T) {
	ds := sample()
	out, err := OneHot(ds, []string{"Company"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "OpSys", "Company_HP", "Company_nan", "Company_Dell", "Price"}, out.Names())
	assert.Equal(t, ds.NumRows(), out.NumRows())

	inds := []string{"Company_HP", "Company_nan", "Company_Dell"}
	for r := 0; r < out.NumRows(); r++ {
		sum := int64(0)
		for _, name := range inds {
			c, _ := out.Column(name)
			n, _ := c.Value(r).AsInt()
			assert.Contains(t, []int64{0, 1}, n)
			sum += n
		}
		assert.Equal(t, int64(1), sum, "row %d", r)
	}
	hp, _ := out.Column("Company_HP")
	assert.Equal(t, []int64{1, 0, 0, 1}, ints(t, hp))
}

func TestOneHotMultipleColumns(t *testing.T) {
	out, err := OneHot(sample(), []string{"OpSys", "Company"})
	require.NoError(t, err)
	assert.Equal(t, 1+3+3+1, out.NumCols())
}

func TestOneHotCollision(t *testing.T) {
	ds := dataset.MustNew(
		dataset.MustColumn("a", dataset.KindText, txt("x"), txt("y")),
		dataset.MustColumn("a_x", dataset.KindInt, dataset.Int(0), dataset.Int(1)),
	)
	_, err := OneHot(ds, []string{"a"})
	assert.ErrorIs(t, err, dataset.ErrNameCollision)
}

func TestEncodingErrors(t *testing.T) {
	_, err := OneHot(sample(), []string{"Price"})
	assert.ErrorIs(t, err, dataset.ErrTypeMismatch)
	_, err = LabelEncode(sample(), []string{"id"})
	assert.ErrorIs(t, err, dataset.ErrTypeMismatch)
	_, err = OneHot(sample(), []string{"Cpu"})
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
	_, err = LabelEncode(sample(), nil)
	assert.ErrorIs(t, err, dataset.ErrEmptySelection)
	_, err = OneHot(sample(), nil)
	assert.ErrorIs(t, err, dataset.ErrEmptySelection)
}
