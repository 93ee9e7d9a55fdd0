// Package tools exposes the individual measurements of the scorer as a grid
// of named analyzers. The grid exists for operators: it answers "which of the
// five analysis tools ran on this exchange" in results, the status endpoint,
// and the terminal viewer. Disabling a tool removes its line from the
// per-exchange breakdown but never changes the integrated score, which is
// computed by the scorer from the full formula set.
package tools

import (
	"fmt"
	"sort"

	"emergence/internal/scorer"
	"emergence/pkg/types"
)

// Canonical tool names, in grid order.
const (
	NameBind     = "bind"     // boundary information flux
	NameTide     = "tide"     // semantic coherence
	NamePattern  = "pattern"  // pattern signature classification
	NameOverflow = "overflow" // concrete-overflow check
	NameTrust    = "trust"    // marker-based trust measure
)

// gridOrder fixes the display order of the five tools.
var gridOrder = []string{NameBind, NameTide, NamePattern, NameOverflow, NameTrust}

// DefaultActive is the set of tools enabled when the configuration does not
// name any: three of the five.
var DefaultActive = []string{NameTide, NamePattern, NameOverflow}

// Result is one tool's contribution to an exchange breakdown.
type Result struct {
	// Tool is the canonical tool name.
	Tool string `json:"tool"`

	// Score is the tool's scalar output in [0, 1]. Boolean tools report 0 or 1.
	Score float64 `json:"score"`

	// Label is the tool's categorical output.
	Label string `json:"label"`
}

// Analyzer is a single named analysis tool.
type Analyzer interface {
	// Name returns the canonical tool name.
	Name() string

	// Analyze measures one (prompt, response) exchange.
	Analyze(prompt, response string) Result
}

// Set is the five-tool grid with per-tool activity flags. A Set is read-only
// after construction and safe for concurrent use.
type Set struct {
	tools  []Analyzer
	active map[string]bool
}

// NewSet builds the grid around the given scorer. active lists the enabled
// tool names; nil or empty falls back to [DefaultActive]. Unknown names are
// rejected so that configuration typos surface at startup rather than as a
// silently idle tool.
func NewSet(s *scorer.Scorer, active []string) (*Set, error) {
	if len(active) == 0 {
		active = DefaultActive
	}

	set := &Set{
		tools: []Analyzer{
			bindTool{},
			tideTool{scorer: s},
			patternTool{},
			overflowTool{},
			trustTool{},
		},
		active: make(map[string]bool, len(active)),
	}

	known := make(map[string]bool, len(set.tools))
	for _, t := range set.tools {
		known[t.Name()] = true
	}
	for _, name := range active {
		if !known[name] {
			names := make([]string, 0, len(known))
			for n := range known {
				names = append(names, n)
			}
			sort.Strings(names)
			return nil, fmt.Errorf("tools: unknown tool %q (known: %v)", name, names)
		}
		set.active[name] = true
	}
	return set, nil
}

// Statuses returns the grid in display order.
func (s *Set) Statuses() []types.ToolStatus {
	out := make([]types.ToolStatus, 0, len(s.tools))
	for _, name := range gridOrder {
		out = append(out, types.ToolStatus{Name: name, Active: s.active[name]})
	}
	return out
}

// ActiveCount returns how many tools are enabled.
func (s *Set) ActiveCount() int { return len(s.active) }

// Summary renders the grid as the conventional "N/5" string.
func (s *Set) Summary() string {
	return fmt.Sprintf("%d/%d", len(s.active), len(s.tools))
}

// Run executes every active tool against one exchange, in grid order.
func (s *Set) Run(prompt, response string) []Result {
	out := make([]Result, 0, len(s.active))
	for _, t := range s.tools {
		if !s.active[t.Name()] {
			continue
		}
		out = append(out, t.Analyze(prompt, response))
	}
	return out
}

type bindTool struct{}

func (bindTool) Name() string { return NameBind }

func (bindTool) Analyze(prompt, response string) Result {
	b := scorer.Boundary(prompt, response)
	return Result{Tool: NameBind, Score: b.Score, Label: string(b.Type)}
}

type tideTool struct {
	scorer *scorer.Scorer
}

func (tideTool) Name() string { return NameTide }

func (t tideTool) Analyze(prompt, response string) Result {
	c := t.scorer.Coherence(prompt, response)
	label := "stable"
	if c < 0.5 {
		label = "drifting"
	}
	return Result{Tool: NameTide, Score: c, Label: label}
}

type patternTool struct{}

func (patternTool) Name() string { return NamePattern }

func (patternTool) Analyze(_, response string) Result {
	p := scorer.Signature(response)
	score := 0.0
	if p != types.PatternNone {
		score = 1
	}
	return Result{Tool: NamePattern, Score: score, Label: string(p)}
}

type overflowTool struct{}

func (overflowTool) Name() string { return NameOverflow }

func (overflowTool) Analyze(_, response string) Result {
	if scorer.OverflowDetected(response) {
		return Result{Tool: NameOverflow, Score: 1, Label: "overflow"}
	}
	return Result{Tool: NameOverflow, Score: 0, Label: "clean"}
}

type trustTool struct{}

func (trustTool) Name() string { return NameTrust }

func (trustTool) Analyze(_, response string) Result {
	score := scorer.TrustScore(response)
	label := "baseline"
	if score > 0.6 {
		label = "marker"
	}
	return Result{Tool: NameTrust, Score: score, Label: label}
}
