package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatNaNIsMissing(t *testing.T) {
	assert.True(t, Float(math.NaN()).IsMissing())
	assert.False(t, Float(0).IsMissing())
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{8, "8.0"},
		{16.5, "16.5"},
		{-3, "-3.0"},
		{0.1, "0.1"},
		{1e21, "1e+21"},
		{math.Inf(1), "+Inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.in))
	}
}

func TestValueRenderingAndKey(t *testing.T) {
	assert.Equal(t, "", Missing().String())
	assert.Equal(t, MissingSentinel, Missing().Key())
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "x", Text("x").Key())
}

func TestValueEqualAndLess(t *testing.T) {
	assert.True(t, Missing().Equal(Missing()))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.True(t, Int(2).Less(Int(10)))
	assert.True(t, Text("10").Less(Text("2")))
	assert.True(t, Bool(false).Less(Bool(true)))
}

func TestNewColumnRejectsWrongKind(t *testing.T) {
	_, err := NewColumn("a", KindInt, []Value{Int(1), Text("x")})
	require.Error(t, err)
	c, err := NewColumn("a", KindInt, []Value{Int(1), Missing()})
	require.NoError(t, err)
	assert.Equal(t, 1, c.MissingCount())
}

func TestNewDatasetValidation(t *testing.T) {
	a := MustColumn("a", KindInt, Int(1), Int(2))
	b := MustColumn("b", KindInt, Int(1))
	_, err := New(a, b)
	require.Error(t, err)

	_, err = New(a, a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNameCollision))
}

func TestCloneIsIndependentAndEqual(t *testing.T) {
	d := MustNew(
		MustColumn("x", KindText, Text("a"), Missing()),
		MustColumn("y", KindFloat, Float(1.5), Float(2)),
	)
	cp := d.Clone()
	assert.True(t, d.Equal(cp))
	assert.NotSame(t, d.ColumnAt(0), cp.ColumnAt(0))
}

func TestHeadTailTake(t *testing.T) {
	d := MustNew(MustColumn("n", KindInt, Int(1), Int(2), Int(3), Int(4)))
	assert.Equal(t, []string{"1"}, d.Head(1).RowStrings(0))
	assert.Equal(t, 2, d.Tail(2).NumRows())
	assert.Equal(t, "3", d.Tail(2).RowStrings(0)[0])
	assert.Equal(t, 4, d.Head(10).NumRows())
	assert.Equal(t, 0, d.Head(-1).NumRows())
}

func TestWithColumnKeepsPosition(t *testing.T) {
	d := MustNew(
		MustColumn("a", KindInt, Int(1)),
		MustColumn("b", KindInt, Int(2)),
		MustColumn("c", KindInt, Int(3)),
	)
	out, err := d.WithColumn(MustColumn("b", KindText, Text("two")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, out.Names())
	assert.Equal(t, KindText, out.ColumnAt(1).Kind())
	assert.Equal(t, KindInt, d.ColumnAt(1).Kind())

	_, err = d.WithColumn(MustColumn("zz", KindInt, Int(0)))
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestDistinctFirstAppearance(t *testing.T) {
	c := MustColumn("c", KindText, Text("b"), Missing(), Text("a"), Text("b"))
	got := c.Distinct()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].String())
	assert.Equal(t, "a", got[1].String())
}

func TestErrorsMatchSentinels(t *testing.T) {
	var err error = &OpError{Op: "fill", Column: "Price", Err: ErrTypeMismatch}
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), `fill "Price"`)

	err = &ParseError{Line: 3, Err: errors.New("wrong number of fields")}
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "line 3")
}
