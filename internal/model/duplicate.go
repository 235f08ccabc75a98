package model

// DuplicateGroup is a set of rows considered duplicates of one another over
// the configured identifying columns.
//
// Exact groups carry similarity 1.0 and partition their rows disjointly: no
// row belongs to two distinct exact groups. Near groups carry the highest
// pairwise similarity that met the detection threshold within the group.
type DuplicateGroup struct {
	// Kind is KindDuplicateExact or KindDuplicateNear.
	Kind IssueKind `json:"kind"`

	// RowIndices lists the zero-based member rows in ascending order.
	RowIndices []int `json:"row_indices"`

	// Similarity is in [0,1]; exactly 1.0 for exact groups.
	Similarity float64 `json:"similarity"`
}

// Size returns the number of member rows.
func (g DuplicateGroup) Size() int {
	return len(g.RowIndices)
}

// Contains reports whether the group includes the given row index.
func (g DuplicateGroup) Contains(row int) bool {
	for _, r := range g.RowIndices {
		if r == row {
			return true
		}
	}
	return false
}
