// internal/models/code_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func buildTestBook() *CodeBook {
	return NewCodeBook([]*Code{
		{Name: "pricing_pressure", Level: 0, Children: []string{"discount_requests", "competitor_undercutting"}},
		{Name: "discount_requests", Parent: "pricing_pressure", Level: 1},
		{Name: "competitor_undercutting", Parent: "pricing_pressure", Level: 1},
		{Name: "churn_risk", Level: 0},
	})
}

// ==========================
// Hierarchy Validation Tests
// ==========================

func TestCodeBook_Validate_CleanHierarchy(t *testing.T) {
	book := buildTestBook()

	issues := book.Validate()

	assert.Empty(t, issues)
	assert.Equal(t, 4, book.Len())
	assert.Len(t, book.Roots(), 2)
	assert.Len(t, book.ChildrenOf("pricing_pressure"), 2)
}

func TestCodeBook_Validate_ReportsViolations(t *testing.T) {
	tests := []struct {
		name         string
		codes        []*Code
		expectedKind string
	}{
		{
			name: "dangling parent reference",
			codes: []*Code{
				{Name: "orphan", Parent: "nowhere", Level: 1},
			},
			expectedKind: IssueMissingParent,
		},
		{
			name: "root with nonzero level",
			codes: []*Code{
				{Name: "floating", Level: 2},
			},
			expectedKind: IssueLevelMismatch,
		},
		{
			name: "child level not parent plus one",
			codes: []*Code{
				{Name: "top", Level: 0, Children: []string{"skipped"}},
				{Name: "skipped", Parent: "top", Level: 3},
			},
			expectedKind: IssueLevelMismatch,
		},
		{
			name: "parent does not list child",
			codes: []*Code{
				{Name: "top", Level: 0},
				{Name: "unlisted", Parent: "top", Level: 1},
			},
			expectedKind: IssueAsymmetricLink,
		},
		{
			name: "duplicate code name",
			codes: []*Code{
				{Name: "repeat", Level: 0},
				{Name: "repeat", Level: 0},
			},
			expectedKind: IssueDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := NewCodeBook(tt.codes)

			issues := book.Validate()

			require.NotEmpty(t, issues)
			kinds := make([]string, 0, len(issues))
			for _, issue := range issues {
				kinds = append(kinds, issue.Kind)
			}
			assert.Contains(t, kinds, tt.expectedKind)
		})
	}
}

func TestCodeBook_DetectCycles(t *testing.T) {
	book := NewCodeBook([]*Code{
		{Name: "a", Parent: "b", Level: 1, Children: []string{"b"}},
		{Name: "b", Parent: "a", Level: 1, Children: []string{"a"}},
		{Name: "standalone", Level: 0},
	})

	cycles := book.DetectCycles()

	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, cycles[0])

	issues := book.Validate()
	kinds := make([]string, 0, len(issues))
	for _, issue := range issues {
		kinds = append(kinds, issue.Kind)
	}
	assert.Contains(t, kinds, IssueCycle)
}

func TestCodeBook_DetectCycles_SelfParent(t *testing.T) {
	book := NewCodeBook([]*Code{
		{Name: "loop", Parent: "loop", Level: 1, Children: []string{"loop"}},
	})

	cycles := book.DetectCycles()

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"loop"}, cycles[0])
}

// ==========================
// Tree Assembly Tests
// ==========================

func TestCodeBook_Tree_AssemblesFromRoots(t *testing.T) {
	book := buildTestBook()

	roots, issues := book.Tree()

	assert.Empty(t, issues)
	require.Len(t, roots, 2)
	assert.Equal(t, "pricing_pressure", roots[0].Code.Name)
	assert.Len(t, roots[0].Children, 2)
	assert.Equal(t, "churn_risk", roots[1].Code.Name)
	assert.Empty(t, roots[1].Children)
}

func TestCodeBook_Tree_ExcludesCyclicCodes(t *testing.T) {
	book := NewCodeBook([]*Code{
		{Name: "healthy", Level: 0},
		{Name: "a", Parent: "b", Level: 1, Children: []string{"b"}},
		{Name: "b", Parent: "a", Level: 1, Children: []string{"a"}},
	})

	roots, issues := book.Tree()

	require.Len(t, roots, 1)
	assert.Equal(t, "healthy", roots[0].Code.Name)
	require.NotEmpty(t, issues)
	assert.Equal(t, IssueCycle, issues[0].Kind)
}

func TestCodeBook_Get_MissingName(t *testing.T) {
	book := buildTestBook()

	code, ok := book.Get("does_not_exist")

	assert.False(t, ok)
	assert.Nil(t, code)
}
