package sqlexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pcc/internal/pipeline"
	"github.com/roach88/pcc/internal/render"
)

func compileSQLite(t *testing.T, source string) string {
	t.Helper()
	out, err := pipeline.Render(source, pipeline.Options{
		Backend: render.BackendSQL,
		Dialect: render.DialectSQLite,
	})
	require.NoError(t, err)
	return out
}

func openExecutor(t *testing.T) *Executor {
	t.Helper()
	e, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEmittedReductionsComputeCorrectValues(t *testing.T) {
	e := openExecutor(t)
	ctx := context.Background()

	cases := map[string]struct {
		source string
		want   int64
	}{
		"sum of odd squares": {"sum(i * i for i in range(1, 6) if i % 2 == 1)", 35},
		"sum over step":      {"sum(i for i in range(0, 10, 3))", 18},
		"max":                {"max(i % 7 for i in range(20))", 6},
		"min with filter":    {"min(i for i in range(10) if i > 4)", 5},
		"descending sum":     {"sum(i for i in range(10, 0, -2))", 30},
		"empty range sum":    {"sum(i for i in range(5, 0))", 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := e.QueryInt(ctx, compileSQLite(t, tc.source))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEmittedExistenceQueries(t *testing.T) {
	e := openExecutor(t)
	ctx := context.Background()

	anyTrue, err := e.QueryBool(ctx, compileSQLite(t, "any(i > 8 for i in range(10))"))
	require.NoError(t, err)
	assert.True(t, anyTrue)

	anyFalse, err := e.QueryBool(ctx, compileSQLite(t, "any(i > 20 for i in range(10))"))
	require.NoError(t, err)
	assert.False(t, anyFalse)

	allTrue, err := e.QueryBool(ctx, compileSQLite(t, "all(i >= 0 for i in range(10))"))
	require.NoError(t, err)
	assert.True(t, allTrue)

	allEmpty, err := e.QueryBool(ctx, compileSQLite(t, "all(i > 100 for i in range(5, 0))"))
	require.NoError(t, err)
	assert.True(t, allEmpty, "all over an empty range is vacuously true")
}

func TestEmittedListPreservesIterationOrder(t *testing.T) {
	e := openExecutor(t)

	values, err := e.QueryValues(context.Background(),
		compileSQLite(t, "[i * i for i in range(1, 6) if i % 2 == 1]"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 9, 25}, values)
}

func TestEmittedCrossJoinPairs(t *testing.T) {
	e := openExecutor(t)

	values, err := e.QueryValues(context.Background(),
		compileSQLite(t, "[i * 10 + j for i in range(3) for j in range(3) if i < j]"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 12}, values)
}

func TestValidateCatchesBrokenSQL(t *testing.T) {
	e := openExecutor(t)
	ctx := context.Background()

	require.NoError(t, e.Validate(ctx, compileSQLite(t, "sum(i for i in range(10))")))
	assert.Error(t, e.Validate(ctx, "SELECT FROM WHERE"))
}
