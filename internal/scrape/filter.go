package scrape

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultAllowTitles are the committees whose sessions are published.
var DefaultAllowTitles = []string{
	"Stadtverordnetenversammlung",
	"Hauptausschuss",
	"Ausschuss für Soziales",
	"Sozialausschuss",
}

// AllowRule keeps sessions whose title contains one of the allow-list entries,
// ignoring case.
const AllowRule = `any(allow, lower(title) contains lower(#))`

type ruleEnv struct {
	Title    string   `expr:"title"`
	Date     string   `expr:"date"`
	Start    string   `expr:"start"`
	End      string   `expr:"end"`
	Location string   `expr:"location"`
	Allow    []string `expr:"allow"`
}

// Filter is a compiled keep rule.
type Filter struct {
	rule    string
	allow   []string
	program *vm.Program
}

// NewFilter compiles rule; an empty rule means AllowRule.
func NewFilter(rule string, allow []string) (*Filter, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		rule = AllowRule
	}
	program, err := expr.Compile(rule, expr.Env(ruleEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile keep rule: %w", err)
	}
	return &Filter{rule: rule, allow: allow, program: program}, nil
}

func (f *Filter) Rule() string    { return f.rule }
func (f *Filter) Allow() []string { return f.allow }

// Keep evaluates the rule for s.
func (f *Filter) Keep(s Session) (bool, error) {
	out, err := expr.Run(f.program, ruleEnv{
		Title:    s.Title,
		Date:     s.Date,
		Start:    s.Time.Start,
		End:      s.Time.End,
		Location: s.Location,
		Allow:    f.allow,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate keep rule for %q: %w", s.Title, err)
	}
	keep, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("keep rule did not return bool")
	}
	return keep, nil
}
