package dedupe

import (
	"testing"

	"github.com/nao1215/crmscan/internal/model"
)

func mustTable(t *testing.T, columns []string, rows [][]string) *model.Table {
	t.Helper()
	table, err := model.NewTable(columns, rows)
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}
	return table
}

// TestDetect tests both passes together: an exact pair that differs
// only in case and whitespace, and a near pair that differs by an
// email suffix.
func TestDetect(t *testing.T) {
	t.Parallel()

	table := mustTable(t,
		[]string{"Lead_ID", "Contact_Name", "Email"},
		[][]string{
			{"1", "John Smith", "john@acme.com"},
			{"2", "Sarah Johnson", "sarah@techstart"},
			{"3", "Mike Brown", "mike@globalfoods.com"},
			{"4", "JOHN  SMITH", "john@acme.com"},
			{"5", "Sarah Johnson", "sarah@techstart.com"},
		},
	)

	detector := NewDetector(WithIdentifyingColumns([]string{"Contact_Name", "Email"}))
	groups, issues := detector.Detect(table)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, expected 2: %+v", len(groups), groups)
	}

	exact := groups[0]
	if exact.Kind != model.KindDuplicateExact {
		t.Errorf("groups[0].Kind = %v, expected %v", exact.Kind, model.KindDuplicateExact)
	}
	if len(exact.RowIndices) != 2 || exact.RowIndices[0] != 0 || exact.RowIndices[1] != 3 {
		t.Errorf("exact RowIndices = %v, expected [0 3]", exact.RowIndices)
	}
	if exact.Similarity != 1.0 {
		t.Errorf("exact Similarity = %v, expected 1.0", exact.Similarity)
	}

	near := groups[1]
	if near.Kind != model.KindDuplicateNear {
		t.Errorf("groups[1].Kind = %v, expected %v", near.Kind, model.KindDuplicateNear)
	}
	if len(near.RowIndices) != 2 || near.RowIndices[0] != 1 || near.RowIndices[1] != 4 {
		t.Errorf("near RowIndices = %v, expected [1 4]", near.RowIndices)
	}
	if near.Similarity < 0.85 || near.Similarity >= 1.0 {
		t.Errorf("near Similarity = %v, expected in [0.85, 1.0)", near.Similarity)
	}

	// One record-level issue per member, exact members before near
	// members, each pass ordered by row.
	if len(issues) != 4 {
		t.Fatalf("got %d issues, expected 4: %+v", len(issues), issues)
	}
	expectedIssues := []struct {
		rowIndex int
		kind     model.IssueKind
	}{
		{0, model.KindDuplicateExact},
		{3, model.KindDuplicateExact},
		{1, model.KindDuplicateNear},
		{4, model.KindDuplicateNear},
	}
	for i, want := range expectedIssues {
		got := issues[i]
		if got.RowIndex != want.rowIndex || got.Kind != want.kind {
			t.Errorf("issues[%d] = {row %d, kind %v}, expected {row %d, kind %v}",
				i, got.RowIndex, got.Kind, want.rowIndex, want.kind)
		}
		if !got.IsRecordLevel() {
			t.Errorf("issues[%d] should be record level", i)
		}
	}
}

// TestDetectExactPrecedence tests the tie-break rule: a row in an
// exact group never reappears in a near group.
func TestDetectExactPrecedence(t *testing.T) {
	t.Parallel()

	// Rows 0 and 1 are exact duplicates. Row 2 is a near match of both,
	// so without the exclusion it would drag them into a near group.
	table := mustTable(t,
		[]string{"Contact_Name"},
		[][]string{
			{"sarah johnson in techstart"},
			{"Sarah Johnson in TechStart"},
			{"sarah johnsen in techstart"},
		},
	)

	detector := NewDetector(WithIdentifyingColumns([]string{"Contact_Name"}))
	groups, _ := detector.Detect(table)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, expected 1: %+v", len(groups), groups)
	}
	if groups[0].Kind != model.KindDuplicateExact {
		t.Errorf("Kind = %v, expected %v", groups[0].Kind, model.KindDuplicateExact)
	}
	for _, row := range groups[0].RowIndices {
		if row == 2 {
			t.Error("row 2 is not an exact duplicate and should not be in the group")
		}
	}
}

// TestDetectEmptySignaturesSkipNearPass tests that rows with no
// identifying content never form near groups.
func TestDetectEmptySignaturesSkipNearPass(t *testing.T) {
	t.Parallel()

	table := mustTable(t,
		[]string{"Contact_Name", "Email"},
		[][]string{
			{"", ""},
			{"abcdefghij", "x@y.zz"},
			{"abcdefghiX", "x@y.zz"},
		},
	)

	detector := NewDetector(WithIdentifyingColumns([]string{"Contact_Name", "Email"}))
	groups, _ := detector.Detect(table)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, expected 1: %+v", len(groups), groups)
	}
	if groups[0].Kind != model.KindDuplicateNear {
		t.Errorf("Kind = %v, expected %v", groups[0].Kind, model.KindDuplicateNear)
	}
	if groups[0].Contains(0) {
		t.Error("the contentless row should not join any near group")
	}
}

// TestDetectContentlessRowsGroupExactly tests that two rows whose
// identifying cells are all empty are indistinguishable and therefore
// exact duplicates of each other.
func TestDetectContentlessRowsGroupExactly(t *testing.T) {
	t.Parallel()

	table := mustTable(t,
		[]string{"Contact_Name", "Email"},
		[][]string{
			{"", ""},
			{"  ", ""},
			{"Mike Brown", "mike@globalfoods.com"},
		},
	)

	detector := NewDetector(WithIdentifyingColumns([]string{"Contact_Name", "Email"}))
	groups, _ := detector.Detect(table)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, expected 1: %+v", len(groups), groups)
	}
	if groups[0].Kind != model.KindDuplicateExact {
		t.Errorf("Kind = %v, expected %v", groups[0].Kind, model.KindDuplicateExact)
	}
	if len(groups[0].RowIndices) != 2 || groups[0].RowIndices[0] != 0 || groups[0].RowIndices[1] != 1 {
		t.Errorf("RowIndices = %v, expected [0 1]", groups[0].RowIndices)
	}
}

// TestDetectWholeRowFallback tests duplicate detection with no
// configured identifying columns.
func TestDetectWholeRowFallback(t *testing.T) {
	t.Parallel()

	table := mustTable(t,
		[]string{"A", "B"},
		[][]string{
			{"x", "y"},
			{"x", "y"},
			{"x", "z"},
		},
	)

	detector := NewDetector()
	groups, _ := detector.Detect(table)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, expected 1: %+v", len(groups), groups)
	}
	if len(groups[0].RowIndices) != 2 || groups[0].RowIndices[0] != 0 || groups[0].RowIndices[1] != 1 {
		t.Errorf("RowIndices = %v, expected [0 1]", groups[0].RowIndices)
	}
}

// TestDetectThreshold tests that raising the threshold drops weaker
// near matches.
func TestDetectThreshold(t *testing.T) {
	t.Parallel()

	table := mustTable(t,
		[]string{"Contact_Name", "Email"},
		[][]string{
			{"Sarah Johnson", "sarah@techstart"},
			{"Sarah Johnson", "sarah@techstart.com"},
		},
	)

	// The pair scores just under 0.88, so it groups at the default
	// threshold and not at 0.95.
	loose := NewDetector(WithIdentifyingColumns([]string{"Contact_Name", "Email"}))
	if groups, _ := loose.Detect(table); len(groups) != 1 {
		t.Errorf("default threshold: got %d groups, expected 1", len(groups))
	}

	strict := NewDetector(
		WithIdentifyingColumns([]string{"Contact_Name", "Email"}),
		WithThreshold(0.95),
	)
	if groups, _ := strict.Detect(table); len(groups) != 0 {
		t.Errorf("strict threshold: got %d groups, expected 0", len(groups))
	}
}

// TestDetectDeterministic tests that repeated runs return identical
// groups and issues.
func TestDetectDeterministic(t *testing.T) {
	t.Parallel()

	table := mustTable(t,
		[]string{"Contact_Name", "Email"},
		[][]string{
			{"John Smith", "john@acme.com"},
			{"John Smith", "john@acme.com"},
			{"Jon Smith", "jon@acme.com"},
			{"John Smyth", "john@acme.com"},
			{"Amy Chen", "amychen@smart.com"},
		},
	)

	detector := NewDetector(WithIdentifyingColumns([]string{"Contact_Name", "Email"}))

	firstGroups, firstIssues := detector.Detect(table)
	secondGroups, secondIssues := detector.Detect(table)

	if len(firstGroups) != len(secondGroups) {
		t.Fatalf("group counts differ: %d vs %d", len(firstGroups), len(secondGroups))
	}
	for i := range firstGroups {
		a, b := firstGroups[i], secondGroups[i]
		if a.Kind != b.Kind || a.Similarity != b.Similarity || len(a.RowIndices) != len(b.RowIndices) {
			t.Errorf("groups[%d] differs between runs: %+v vs %+v", i, a, b)
			continue
		}
		for j := range a.RowIndices {
			if a.RowIndices[j] != b.RowIndices[j] {
				t.Errorf("groups[%d].RowIndices[%d] differs: %d vs %d", i, j, a.RowIndices[j], b.RowIndices[j])
			}
		}
	}

	if len(firstIssues) != len(secondIssues) {
		t.Fatalf("issue counts differ: %d vs %d", len(firstIssues), len(secondIssues))
	}
	for i := range firstIssues {
		if firstIssues[i] != secondIssues[i] {
			t.Errorf("issues[%d] differs between runs: %+v vs %+v", i, firstIssues[i], secondIssues[i])
		}
	}
}
