package table

// Column names the Publisher expects on the leaf feature table.
const (
	ColumnGene1   = "Gene1"
	ColumnGene2   = "Gene2"
	ColumnHasEdge = "has_edge"
)

// FeatureRow is one original input edge between two genes.
type FeatureRow struct {
	Gene1   string
	Gene2   string
	HasEdge float64
}

// FeatureTable is the input edge list with its columns renamed to the fixed
// semantic names.
type FeatureTable struct {
	Columns [3]string
	Rows    []FeatureRow
}

// Features renames a parsed input table to Gene1, Gene2 and has_edge. Rows
// without a numeric third column are recorded with has_edge = 1.
func Features(t *Table) *FeatureTable {
	ft := &FeatureTable{
		Columns: [3]string{ColumnGene1, ColumnGene2, ColumnHasEdge},
		Rows:    make([]FeatureRow, 0, t.Len()),
	}
	for _, r := range t.Rows() {
		hasEdge := 1.0
		if r.HasWeight {
			hasEdge = r.Weight
		}
		ft.Rows = append(ft.Rows, FeatureRow{Gene1: r.Parent(), Gene2: r.Child(), HasEdge: hasEdge})
	}
	return ft
}

// Len returns the number of feature rows.
func (f *FeatureTable) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}
