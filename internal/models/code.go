// internal/models/code.go
package models

import "fmt"

// Code is one node of the hierarchical coding scheme. Parent and Children
// hold code names, never pointers; the CodeBook resolves them at read time.
type Code struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Properties       []string `json:"properties,omitempty"`
	Dimensions       []string `json:"dimensions,omitempty"`
	SupportingQuotes []string `json:"supportingQuotes,omitempty"`
	Frequency        int      `json:"frequency"`
	Confidence       float64  `json:"confidence"`
	Parent           string   `json:"parent,omitempty"`
	Level            int      `json:"level"`
	Children         []string `json:"children,omitempty"`
}

// IsRoot reports whether the code has no parent reference.
func (c *Code) IsRoot() bool {
	return c.Parent == ""
}

// StructuralIssue describes a hierarchy violation found in model output.
// Issues are reported, never panicked on.
type StructuralIssue struct {
	Code   string `json:"code"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

const (
	IssueMissingParent  = "missing_parent"
	IssueLevelMismatch  = "level_mismatch"
	IssueAsymmetricLink = "asymmetric_link"
	IssueDuplicateName  = "duplicate_name"
	IssueCycle          = "cycle"
)

// CodeBook indexes a flat set of codes by name so parent/child references
// can be resolved without cyclic pointers.
type CodeBook struct {
	codes []*Code
	index map[string]int
}

func NewCodeBook(codes []*Code) *CodeBook {
	b := &CodeBook{index: make(map[string]int, len(codes))}
	for _, c := range codes {
		b.Add(c)
	}
	return b
}

// Add appends a code. A duplicate name keeps the first occurrence in the
// index; Validate reports the duplicate.
func (b *CodeBook) Add(c *Code) {
	b.codes = append(b.codes, c)
	if _, exists := b.index[c.Name]; !exists {
		b.index[c.Name] = len(b.codes) - 1
	}
}

func (b *CodeBook) Get(name string) (*Code, bool) {
	i, ok := b.index[name]
	if !ok {
		return nil, false
	}
	return b.codes[i], true
}

func (b *CodeBook) Len() int {
	return len(b.codes)
}

// All returns the codes in insertion order.
func (b *CodeBook) All() []*Code {
	return b.codes
}

func (b *CodeBook) Roots() []*Code {
	var roots []*Code
	for _, c := range b.codes {
		if c.IsRoot() {
			roots = append(roots, c)
		}
	}
	return roots
}

func (b *CodeBook) ChildrenOf(name string) []*Code {
	c, ok := b.Get(name)
	if !ok {
		return nil
	}
	var children []*Code
	for _, childName := range c.Children {
		if child, ok := b.Get(childName); ok {
			children = append(children, child)
		}
	}
	return children
}

// Validate reports every structural violation in the book: dangling parent
// references, level invariant breaks (level = parent.level+1, 0 for roots),
// parent/child asymmetry, duplicate names, and parent cycles.
func (b *CodeBook) Validate() []StructuralIssue {
	var issues []StructuralIssue

	seen := make(map[string]bool, len(b.codes))
	for _, c := range b.codes {
		if seen[c.Name] {
			issues = append(issues, StructuralIssue{
				Code:   c.Name,
				Kind:   IssueDuplicateName,
				Detail: "code name appears more than once",
			})
			continue
		}
		seen[c.Name] = true
	}

	for _, c := range b.codes {
		if c.IsRoot() {
			if c.Level != 0 {
				issues = append(issues, StructuralIssue{
					Code:   c.Name,
					Kind:   IssueLevelMismatch,
					Detail: fmt.Sprintf("root code has level %d, expected 0", c.Level),
				})
			}
		} else {
			parent, ok := b.Get(c.Parent)
			if !ok {
				issues = append(issues, StructuralIssue{
					Code:   c.Name,
					Kind:   IssueMissingParent,
					Detail: fmt.Sprintf("parent %q not found", c.Parent),
				})
			} else {
				if c.Level != parent.Level+1 {
					issues = append(issues, StructuralIssue{
						Code:   c.Name,
						Kind:   IssueLevelMismatch,
						Detail: fmt.Sprintf("level %d, expected %d (parent %q)", c.Level, parent.Level+1, parent.Name),
					})
				}
				if !contains(parent.Children, c.Name) {
					issues = append(issues, StructuralIssue{
						Code:   c.Name,
						Kind:   IssueAsymmetricLink,
						Detail: fmt.Sprintf("parent %q does not list it as child", parent.Name),
					})
				}
			}
		}
		for _, childName := range c.Children {
			child, ok := b.Get(childName)
			if !ok {
				issues = append(issues, StructuralIssue{
					Code:   c.Name,
					Kind:   IssueAsymmetricLink,
					Detail: fmt.Sprintf("child %q not found", childName),
				})
				continue
			}
			if child.Parent != c.Name {
				issues = append(issues, StructuralIssue{
					Code:   c.Name,
					Kind:   IssueAsymmetricLink,
					Detail: fmt.Sprintf("child %q names parent %q", childName, child.Parent),
				})
			}
		}
	}

	for _, cycle := range b.DetectCycles() {
		issues = append(issues, StructuralIssue{
			Code:   cycle[0],
			Kind:   IssueCycle,
			Detail: fmt.Sprintf("parent chain cycles: %v", cycle),
		})
	}

	return issues
}

// DetectCycles walks every parent chain and returns each distinct cycle as
// the list of code names on it.
func (b *CodeBook) DetectCycles() [][]string {
	var cycles [][]string
	reported := make(map[string]bool)

	for _, start := range b.codes {
		onPath := make(map[string]int)
		var path []string
		current := start
		for {
			if pos, ok := onPath[current.Name]; ok {
				cycle := append([]string{}, path[pos:]...)
				if !reported[cycleKey(cycle)] {
					reported[cycleKey(cycle)] = true
					cycles = append(cycles, cycle)
				}
				break
			}
			onPath[current.Name] = len(path)
			path = append(path, current.Name)
			if current.IsRoot() {
				break
			}
			parent, ok := b.Get(current.Parent)
			if !ok {
				break
			}
			current = parent
		}
	}
	return cycles
}

// TreeNode is the display form of the hierarchy.
type TreeNode struct {
	Code     *Code       `json:"code"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Tree assembles the display tree from the roots down. Codes on a parent
// cycle never reach a root and are reported as issues instead of rendered.
func (b *CodeBook) Tree() ([]*TreeNode, []StructuralIssue) {
	var issues []StructuralIssue
	cyclic := make(map[string]bool)
	for _, cycle := range b.DetectCycles() {
		for _, name := range cycle {
			cyclic[name] = true
		}
		issues = append(issues, StructuralIssue{
			Code:   cycle[0],
			Kind:   IssueCycle,
			Detail: fmt.Sprintf("excluded from tree: %v", cycle),
		})
	}

	var build func(c *Code, onPath map[string]bool) *TreeNode
	build = func(c *Code, onPath map[string]bool) *TreeNode {
		node := &TreeNode{Code: c}
		onPath[c.Name] = true
		for _, childName := range c.Children {
			child, ok := b.Get(childName)
			if !ok || cyclic[childName] || onPath[childName] {
				continue
			}
			node.Children = append(node.Children, build(child, onPath))
		}
		delete(onPath, c.Name)
		return node
	}

	var roots []*TreeNode
	for _, c := range b.Roots() {
		if cyclic[c.Name] {
			continue
		}
		roots = append(roots, build(c, make(map[string]bool)))
	}
	return roots, issues
}

func cycleKey(cycle []string) string {
	// Rotate so the lexically smallest name leads, making the key stable
	// regardless of which member the walk entered on.
	min := 0
	for i := range cycle {
		if cycle[i] < cycle[min] {
			min = i
		}
	}
	key := ""
	for i := 0; i < len(cycle); i++ {
		key += cycle[(min+i)%len(cycle)] + "|"
	}
	return key
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
