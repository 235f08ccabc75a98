package dedupe

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/nao1215/crmscan/internal/model"
)

// DefaultThreshold is the similarity at or above which two rows are
// considered near duplicates.
const DefaultThreshold = 0.85

// Detector finds exact and near duplicate rows. The zero value is not
// usable; construct with NewDetector.
type Detector struct {
	identifying []string
	threshold   float64
}

// Option configures a Detector.
type Option func(*Detector)

// WithIdentifyingColumns sets the columns whose values identify a
// record. An empty set means the whole row identifies the record.
func WithIdentifyingColumns(columns []string) Option {
	return func(d *Detector) {
		d.identifying = columns
	}
}

// WithThreshold overrides the near-duplicate similarity threshold.
// Values outside (0, 1] are ignored.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) {
		if threshold > 0 && threshold <= 1 {
			d.threshold = threshold
		}
	}
}

// NewDetector creates a Detector with the given options applied.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs both duplicate passes and returns the groups found plus
// one record-level issue per group member. Exact groups come first in
// both return values; within each pass, groups are ordered by their
// smallest row index and issues by row index.
func (d *Detector) Detect(table *model.Table) ([]model.DuplicateGroup, []model.Issue) {
	signer := newSigner(table, d.identifying)
	signatures := make([]string, table.RowCount())
	for i, record := range table.Records() {
		signatures[i] = signer.signature(record)
	}

	exactGroups, inExact := d.exactPass(signatures)
	nearGroups := d.nearPass(signatures, inExact)

	groups := make([]model.DuplicateGroup, 0, len(exactGroups)+len(nearGroups))
	groups = append(groups, exactGroups...)
	groups = append(groups, nearGroups...)

	return groups, issuesFor(exactGroups, nearGroups)
}

// exactPass buckets rows by hashed signature and turns every bucket
// with two or more members into an exact group with similarity 1.0.
// Every member row is flagged; with no authoritative original there is
// nothing to exempt.
func (d *Detector) exactPass(signatures []string) ([]model.DuplicateGroup, []bool) {
	buckets := make(map[string][]int, len(signatures))
	for row, signature := range signatures {
		key := signatureKey(signature)
		buckets[key] = append(buckets[key], row)
	}

	inExact := make([]bool, len(signatures))
	var groups []model.DuplicateGroup
	for _, rows := range buckets {
		if len(rows) < 2 {
			continue
		}
		for _, row := range rows {
			inExact[row] = true
		}
		groups = append(groups, model.DuplicateGroup{
			Kind:       model.KindDuplicateExact,
			RowIndices: rows,
			Similarity: 1.0,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].RowIndices[0] < groups[j].RowIndices[0]
	})
	return groups, inExact
}

// nearPass compares the rows left over from the exact pass pairwise
// and unions pairs at or above the threshold into groups. A group's
// similarity is the strongest accepted pair inside it. Rows whose
// identifying cells are all empty are skipped: empty matches empty with
// similarity 1.0, and grouping contentless rows would be pure noise.
func (d *Detector) nearPass(signatures []string, inExact []bool) []model.DuplicateGroup {
	var candidates []int
	for row, signature := range signatures {
		if !inExact[row] && !empty(signature) {
			candidates = append(candidates, row)
		}
	}
	if len(candidates) < 2 {
		return nil
	}

	lengths := make(map[int]int, len(candidates))
	for _, row := range candidates {
		lengths[row] = utf8.RuneCountInString(signatures[row])
	}

	type edge struct {
		a, b       int
		similarity float64
	}

	uf := newUnionFind(len(signatures))
	var edges []edge
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]

			// Length difference alone bounds the reachable similarity,
			// so most pairs skip the quadratic distance computation.
			la, lb := lengths[a], lengths[b]
			longest := la
			if lb > longest {
				longest = lb
			}
			diff := la - lb
			if diff < 0 {
				diff = -diff
			}
			if longest > 0 && 1-float64(diff)/float64(longest) < d.threshold {
				continue
			}

			similarity := Similarity(signatures[a], signatures[b])
			if similarity >= d.threshold {
				uf.union(a, b)
				edges = append(edges, edge{a: a, b: b, similarity: similarity})
			}
		}
	}
	if len(edges) == 0 {
		return nil
	}

	members := make(map[int][]int)
	for _, row := range candidates {
		root := uf.find(row)
		members[root] = append(members[root], row)
	}

	strongest := make(map[int]float64)
	for _, e := range edges {
		root := uf.find(e.a)
		if e.similarity > strongest[root] {
			strongest[root] = e.similarity
		}
	}

	var groups []model.DuplicateGroup
	for root, rows := range members {
		if len(rows) < 2 {
			continue
		}
		groups = append(groups, model.DuplicateGroup{
			Kind:       model.KindDuplicateNear,
			RowIndices: rows,
			Similarity: strongest[root],
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].RowIndices[0] < groups[j].RowIndices[0]
	})
	return groups
}

// issuesFor emits one record-level issue per group member, exact
// members first, each pass ordered by row index.
func issuesFor(exact, near []model.DuplicateGroup) []model.Issue {
	var issues []model.Issue

	byRow := func(groups []model.DuplicateGroup, build func(model.DuplicateGroup) (model.IssueKind, string)) {
		type flagged struct {
			row    int
			kind   model.IssueKind
			detail string
		}
		var rows []flagged
		for _, group := range groups {
			kind, detail := build(group)
			for _, row := range group.RowIndices {
				rows = append(rows, flagged{row: row, kind: kind, detail: detail})
			}
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].row < rows[j].row })
		for _, f := range rows {
			issues = append(issues, model.NewRecordIssue(f.row, f.kind, f.detail))
		}
	}

	byRow(exact, func(group model.DuplicateGroup) (model.IssueKind, string) {
		return model.KindDuplicateExact,
			fmt.Sprintf("exact duplicate within a group of %d records", group.Size())
	})
	byRow(near, func(group model.DuplicateGroup) (model.IssueKind, string) {
		return model.KindDuplicateNear,
			fmt.Sprintf("near duplicate within a group of %d records (similarity %.2f)", group.Size(), group.Similarity)
	})
	return issues
}
