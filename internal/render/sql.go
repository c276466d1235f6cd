package render

import (
	"fmt"
	"strings"

	"github.com/roach88/pcc/internal/ir"
)

// renderSQL emits a single SELECT statement. Each generator becomes a
// derived table produced by the dialect's integer-series construct,
// with single-variable predicates pushed into that table's WHERE;
// cross-variable predicates land in the outer WHERE. Generators join
// with CROSS JOIN, any/all compile to EXISTS/NOT EXISTS, and a
// comprehension proven empty upstream keeps its shape behind a
// WHERE 1 = 0 guard.
func renderSQL(c *ir.Comp, opts Options) (string, error) {
	dialect, err := dialectFor(opts.Dialect)
	if err != nil {
		return "", err
	}
	if err := sqlCheck(c); err != nil {
		return "", err
	}

	vars := make([]string, len(c.Generators))
	for i, g := range c.Generators {
		vars[i] = g.Var
	}

	// Split predicates: single-variable ones go inside the generator's
	// derived table, the rest stay on the outer query.
	inner := make([][]string, len(c.Generators))
	var outer []string
	for _, f := range c.Filters {
		if sqlSingleVar(f.Pred, vars[f.GenIndex], vars) {
			inner[f.GenIndex] = append(inner[f.GenIndex], sqlStyle.expr(f.Pred))
		} else {
			outer = append(outer, "("+sqlStyle.expr(f.Pred)+")")
		}
	}
	if c.Empty {
		outer = append(outer, "1 = 0")
	}

	w := newWriter("    ")
	w.line("-- %s", opts.funcName())
	if c.Reduce != nil {
		sqlReduce(w, c, dialect, inner, outer, opts)
	} else {
		sqlSelect(w, c, dialect, inner, outer)
	}
	return w.String(), nil
}

func dialectFor(d Dialect) (sqlDialect, error) {
	switch d {
	case DialectPostgres, "":
		return postgresDialect{}, nil
	case DialectSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, &UnsupportedError{Backend: BackendSQL, Detail: fmt.Sprintf("unknown dialect %q", d)}
	}
}

// sqlCheck rejects shapes the SQL backend cannot express.
func sqlCheck(c *ir.Comp) error {
	unsupported := func(detail string) error {
		return &UnsupportedError{Backend: BackendSQL, Detail: detail}
	}
	if c.Reduce != nil && c.Reduce.Op == ir.ReduceProd {
		return unsupported("prod reduction")
	}
	seen := make(map[string]bool)
	bound := make(map[string]bool)
	for _, g := range c.Generators {
		if seen[g.Var] {
			return unsupported(fmt.Sprintf("duplicate generator variable %q", g.Var))
		}
		seen[g.Var] = true
		rng, ok := g.Source.(ir.RangeExpr)
		if !ok {
			return unsupported("opaque iterable source")
		}
		// Derived tables cannot see sibling columns without LATERAL, so
		// every range bound must be closed.
		for _, b := range []ir.Expr{rng.Start, rng.Stop, rng.Step} {
			for v := range ir.FreeVars(b) {
				return unsupported(fmt.Sprintf("range bound references variable %q", v))
			}
		}
		bound[g.Var] = true
	}
	exprs := []ir.Expr{c.Element, c.Key, c.Value}
	for _, f := range c.Filters {
		exprs = append(exprs, f.Pred)
	}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		for v := range ir.FreeVars(e) {
			if !bound[v] {
				return unsupported(fmt.Sprintf("free variable %q", v))
			}
		}
	}
	return nil
}

// sqlSingleVar reports whether pred references no generator variable
// other than own.
func sqlSingleVar(pred ir.Expr, own string, vars []string) bool {
	free := ir.FreeVars(pred)
	for _, v := range vars {
		if v != own && free[v] {
			return false
		}
	}
	return true
}

func sqlFrom(w *writer, c *ir.Comp, dialect sqlDialect, inner [][]string) {
	for i, g := range c.Generators {
		keyword := "FROM ("
		if i > 0 {
			keyword = "CROSS JOIN ("
		}
		w.line("%s", keyword)
		w.in()
		info, _ := rangeOf(g.Source, sqlStyle)
		dialect.series(w, g.Var, info, i)
		if len(inner[i]) > 0 {
			w.line("WHERE %s", strings.Join(inner[i], " AND "))
		}
		w.out()
		w.line(") AS t%d", i)
	}
}

func sqlOrderBy(c *ir.Comp) string {
	cols := make([]string, len(c.Generators))
	for i, g := range c.Generators {
		cols[i] = g.Var
		if info, ok := rangeOf(g.Source, sqlStyle); ok && info.descending() {
			cols[i] += " DESC"
		}
	}
	return strings.Join(cols, ", ")
}

func sqlSelect(w *writer, c *ir.Comp, dialect sqlDialect, inner [][]string, outer []string) {
	switch c.Kind {
	case ir.KindSet:
		w.line("SELECT DISTINCT %s AS value", sqlStyle.expr(c.Element))
	case ir.KindDict:
		w.line("SELECT %s AS key, %s AS value", sqlStyle.expr(c.Key), sqlStyle.expr(c.Value))
	default:
		w.line("SELECT %s AS value", sqlStyle.expr(c.Element))
	}
	sqlFrom(w, c, dialect, inner)
	if len(outer) > 0 {
		w.line("WHERE %s", strings.Join(outer, " AND "))
	}
	if c.Kind == ir.KindList || c.Kind == ir.KindGenerator {
		w.line("ORDER BY %s", sqlOrderBy(c))
	}
}

func sqlReduce(w *writer, c *ir.Comp, dialect sqlDialect, inner [][]string, outer []string, opts Options) {
	expr := sqlStyle.expr(reduceExpr(c))
	intMin, intMax := "-9223372036854775808", "9223372036854775807"
	if opts.intWidth() == 32 {
		intMin, intMax = "-2147483648", "2147483647"
	}

	switch c.Reduce.Op {
	case ir.ReduceSum:
		w.line("SELECT COALESCE(SUM(%s), 0) AS result", expr)
	case ir.ReduceMax:
		w.line("SELECT COALESCE(MAX(%s), %s) AS result", expr, intMin)
	case ir.ReduceMin:
		w.line("SELECT COALESCE(MIN(%s), %s) AS result", expr, intMax)
	case ir.ReduceAny, ir.ReduceAll:
		sqlExists(w, c, dialect, inner, outer, expr)
		return
	}
	sqlFrom(w, c, dialect, inner)
	if len(outer) > 0 {
		w.line("WHERE %s", strings.Join(outer, " AND "))
	}
}

// sqlExists compiles any to EXISTS over the matching rows and all to
// NOT EXISTS over the violating ones.
func sqlExists(w *writer, c *ir.Comp, dialect sqlDialect, inner [][]string, outer []string, expr string) {
	conds := append([]string(nil), outer...)
	if c.Reduce.Op == ir.ReduceAny {
		w.line("SELECT EXISTS (")
		conds = append(conds, "("+expr+")")
	} else {
		w.line("SELECT NOT EXISTS (")
		conds = append(conds, "NOT ("+expr+")")
	}
	w.in()
	w.line("SELECT 1")
	sqlFrom(w, c, dialect, inner)
	w.line("WHERE %s", strings.Join(conds, " AND "))
	w.out()
	w.line(") AS result")
}

// sqlDialect abstracts how a dialect manufactures an integer series as
// a derived-table body with one column named after the generator
// variable.
type sqlDialect interface {
	series(w *writer, col string, info rangeInfo, idx int)
}

type postgresDialect struct{}

// series uses generate_series, shifting the half-open stop to the
// inclusive bound the function expects: stop-1 for ascending steps,
// stop+1 for descending ones.
func (postgresDialect) series(w *writer, col string, info rangeInfo, idx int) {
	var call string
	switch {
	case info.static && info.step == 1:
		call = fmt.Sprintf("generate_series(%d, %d)", info.start, info.stop-1)
	case info.static && info.step > 0:
		call = fmt.Sprintf("generate_series(%d, %d, %d)", info.start, info.stop-1, info.step)
	case info.static:
		call = fmt.Sprintf("generate_series(%d, %d, %d)", info.start, info.stop+1, info.step)
	default:
		call = fmt.Sprintf("generate_series(%s, (%s) - 1, %s)", info.startS, info.stopS, info.stepS)
	}
	w.line("SELECT %s", col)
	w.line("FROM %s AS g%d(%s)", call, idx, col)
}

type sqliteDialect struct{}

// series builds the equivalent recursive CTE. The anchor row carries
// its own guard so an already-empty range produces no rows at all.
func (sqliteDialect) series(w *writer, col string, info rangeInfo, idx int) {
	cmp := "<"
	if info.static && info.step < 0 {
		cmp = ">"
	}
	step := info.stepS
	if info.static {
		step = fmt.Sprintf("%d", info.step)
	}
	w.line("WITH RECURSIVE series%d(%s) AS (", idx, col)
	w.in()
	w.line("SELECT %s WHERE %s %s %s", info.startS, info.startS, cmp, info.stopS)
	w.line("UNION ALL")
	w.line("SELECT %s + %s FROM series%d WHERE %s + %s %s %s",
		col, step, idx, col, step, cmp, info.stopS)
	w.out()
	w.line(")")
	w.line("SELECT %s FROM series%d", col, idx)
}
