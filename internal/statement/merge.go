package statement

import (
	"slices"
	"strings"
)

// Prefix returns the namespace prefix applied to a statement type's fields in
// a merged record. Income statement fields are not prefixed.
func Prefix(typ StatementType) string {
	if typ == IncomeStatement {
		return ""
	}
	return string(typ) + "."
}

// TypeOf returns the statement type a merged column belongs to and the bare
// field name, judged by prefix alone. An income field whose own name starts
// with a statement prefix is ambiguous here; MergedRecord.Origin is exact.
func TypeOf(column string) (StatementType, string) {
	for _, typ := range []StatementType{BalanceSheet, CashFlow} {
		if name, ok := strings.CutPrefix(column, Prefix(typ)); ok {
			return typ, name
		}
	}
	return IncomeStatement, column
}

// MergedRecord is the union of the three statements for one period.
type MergedRecord struct {
	Period  Period              `json:"period"`
	Fields  map[string]*float64 `json:"fields"`
	Columns []string            `json:"columns"`
	Sources []StatementType     `json:"sources"`
	// Origins records the statement each column came from.
	Origins map[string]StatementType `json:"-"`
}

// Origin returns the statement type of column and its bare field name.
// Records without origins, such as decoded ones, fall back to TypeOf.
func (r MergedRecord) Origin(column string) (StatementType, string) {
	typ, ok := r.Origins[column]
	if !ok {
		return TypeOf(column)
	}
	return typ, strings.TrimPrefix(column, Prefix(typ))
}

// Value returns the named figure. ok is false when the column is absent;
// a present column may still hold a nil value.
func (r MergedRecord) Value(column string) (v *float64, ok bool) {
	v, ok = r.Fields[column]
	return v, ok
}

// MergedTable is a sequence of merged records in chronological order.
type MergedTable struct {
	Records []MergedRecord `json:"records"`
	// Unavailable lists requested periods for which no statement had data.
	Unavailable []Period `json:"unavailablePeriods"`
}

// Merge joins the three statement collections of store for each period.
//
// The periods are de-duplicated and sorted first, so the result is ordered
// chronologically whatever the input order. A period with no data in any
// statement is left out and reported in Unavailable.
func Merge(store *Store, periods []Period) MergedTable {
	t := MergedTable{Records: []MergedRecord{}}
	for _, p := range UniquePeriods(periods) {
		rec, ok := mergePeriod(store, p)
		if !ok {
			t.Unavailable = append(t.Unavailable, p)
			continue
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

func mergePeriod(store *Store, p Period) (MergedRecord, bool) {
	m := MergedRecord{Period: p, Fields: make(map[string]*float64), Origins: make(map[string]StatementType)}
	for _, typ := range StatementTypes() {
		r, ok := store.Lookup(typ, p)
		if !ok {
			continue
		}
		m.Sources = append(m.Sources, typ)
		prefix := Prefix(typ)
		for _, name := range r.Names() {
			col := prefix + name
			// first assignment wins: income, then balance sheet, then cash flow.
			if _, taken := m.Fields[col]; taken {
				continue
			}
			m.Fields[col] = r.Fields[name]
			m.Origins[col] = typ
			m.Columns = append(m.Columns, col)
		}
	}
	return m, len(m.Sources) > 0
}

// Len returns the number of rows.
func (t MergedTable) Len() int { return len(t.Records) }

// Periods returns the row periods in order.
func (t MergedTable) Periods() []Period {
	out := make([]Period, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Period
	}
	return out
}

// Latest returns the last (most recent) row.
func (t MergedTable) Latest() (MergedRecord, bool) {
	if len(t.Records) == 0 {
		return MergedRecord{}, false
	}
	return t.Records[len(t.Records)-1], true
}

// Row returns the row for period p.
func (t MergedTable) Row(p Period) (MergedRecord, bool) {
	i, found := slices.BinarySearchFunc(t.Records, p, func(r MergedRecord, q Period) int {
		return Compare(r.Period, q)
	})
	if !found {
		return MergedRecord{}, false
	}
	return t.Records[i], true
}

// Columns returns every column name in first-seen order.
func (t MergedTable) Columns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Records {
		for _, c := range r.Columns {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Column returns the values of one column aligned with Periods.
// Rows without the column yield nil.
func (t MergedTable) Column(name string) []*float64 {
	out := make([]*float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Fields[name]
	}
	return out
}

// Sub extracts the part of the table that came from one statement type,
// with the namespace prefix stripped. Rows without any field of that type
// are left out.
func (t MergedTable) Sub(typ StatementType) MergedTable {
	sub := MergedTable{Records: []MergedRecord{}}
	for _, r := range t.Records {
		out := MergedRecord{
			Period:  r.Period,
			Fields:  make(map[string]*float64),
			Sources: []StatementType{typ},
			Origins: make(map[string]StatementType),
		}
		for _, col := range r.Columns {
			ct, name := r.Origin(col)
			if ct != typ {
				continue
			}
			out.Fields[name] = r.Fields[col]
			out.Columns = append(out.Columns, name)
			out.Origins[name] = typ
		}
		if len(out.Columns) > 0 {
			sub.Records = append(sub.Records, out)
		}
	}
	return sub
}

// Only is Sub without stripping the prefix: the columns keep the names
// they have in the full table.
func (t MergedTable) Only(typ StatementType) MergedTable {
	sub := t.Sub(typ)
	prefix := Prefix(typ)
	if prefix == "" {
		return sub
	}
	for i, r := range sub.Records {
		fields := make(map[string]*float64, len(r.Fields))
		origins := make(map[string]StatementType, len(r.Fields))
		for j, c := range r.Columns {
			fields[prefix+c] = r.Fields[c]
			origins[prefix+c] = typ
			r.Columns[j] = prefix + c
		}
		sub.Records[i].Fields = fields
		sub.Records[i].Origins = origins
	}
	return sub
}

// Split returns the three per-statement views of the table.
func (t MergedTable) Split() map[StatementType]MergedTable {
	out := make(map[StatementType]MergedTable, 3)
	for _, typ := range StatementTypes() {
		out[typ] = t.Sub(typ)
	}
	return out
}
