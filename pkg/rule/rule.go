// Package rule routes repositories to filesystem locations. Source rules are
// ordered and first-match-wins; project rules all match independently and
// contribute their actions in declaration order.
package rule

import (
	"fmt"

	"github.com/macropower/grove/pkg/action"
	"github.com/macropower/grove/pkg/expr"
	"github.com/macropower/grove/pkg/template"
)

// SourceRule overrides the default source and worktree path templates for
// repositories matching its predicate. An empty predicate matches every
// repository, which makes a trailing catch-all rule possible.
type SourceRule struct {
	Name      string `json:"name,omitempty"      jsonschema:"title=Name"`
	Predicate string `json:"predicate,omitempty" jsonschema:"title=Predicate"`
	Sources   string `json:"sources,omitempty"   jsonschema:"title=Source Path Template"`
	Worktrees string `json:"worktrees,omitempty" jsonschema:"title=Worktree Path Template"`
}

// Validate checks the predicate for syntax errors.
func (r *SourceRule) Validate() error {
	if r.Predicate != "" {
		if err := expr.Check(r.Predicate); err != nil {
			return fmt.Errorf("rule %q: predicate: %w", r.Name, err)
		}
	}

	return nil
}

// ProjectRule attaches post-clone and post-worktree actions to repositories
// matching its predicate.
type ProjectRule struct {
	Name            string          `json:"name,omitempty"            jsonschema:"title=Name"`
	Predicate       string          `json:"predicate,omitempty"       jsonschema:"title=Predicate"`
	SourceActions   []action.Action `json:"sourceActions,omitempty"   jsonschema:"title=Source Actions"`
	WorktreeActions []action.Action `json:"worktreeActions,omitempty" jsonschema:"title=Worktree Actions"`
}

// Validate checks the predicate and every action.
func (r *ProjectRule) Validate() error {
	if r.Predicate != "" {
		if err := expr.Check(r.Predicate); err != nil {
			return fmt.Errorf("project %q: predicate: %w", r.Name, err)
		}
	}

	for i := range r.SourceActions {
		if err := r.SourceActions[i].Validate(); err != nil {
			return fmt.Errorf("project %q: sourceActions[%d]: %w", r.Name, i, err)
		}
	}

	for i := range r.WorktreeActions {
		if err := r.WorktreeActions[i].Validate(); err != nil {
			return fmt.Errorf("project %q: worktreeActions[%d]: %w", r.Name, i, err)
		}
	}

	return nil
}

// Defaults are the fallback path templates used when no source rule matches
// or a matching rule omits an override.
type Defaults struct {
	Sources   string `json:"sources"   jsonschema:"title=Default Source Path Template"`
	Worktrees string `json:"worktrees" jsonschema:"title=Default Worktree Path Template"`
}

// Resolver evaluates source and project rules against an evaluation context.
type Resolver struct {
	Defaults Defaults
	Sources  []SourceRule
	Projects []ProjectRule
}

// FindSourceRule returns the first source rule whose predicate holds for
// ctx, or nil when none match.
func (r *Resolver) FindSourceRule(ctx expr.Context) (*SourceRule, error) {
	table := expr.NewTable(expr.ScopePath, ctx)

	for i := range r.Sources {
		sr := &r.Sources[i]
		if sr.Predicate == "" {
			return sr, nil
		}

		ok, err := expr.EvaluatePredicate(sr.Predicate, table)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", sr.Name, err)
		}

		if ok {
			return sr, nil
		}
	}

	return nil, nil
}

// ResolveSourcePath computes the clone destination for ctx. It returns the
// expanded absolute path and the rule that supplied the template, nil when
// the defaults applied.
func (r *Resolver) ResolveSourcePath(ctx expr.Context) (string, *SourceRule, error) {
	matched, err := r.FindSourceRule(ctx)
	if err != nil {
		return "", nil, err
	}

	tmpl := r.Defaults.Sources
	if matched != nil && matched.Sources != "" {
		tmpl = matched.Sources
	}

	p, err := expandPath(tmpl, ctx)
	if err != nil {
		return "", nil, err
	}

	return p, matched, nil
}

// ResolveWorktreePath computes the worktree destination for ctx, following
// the same rule selection as [Resolver.ResolveSourcePath].
func (r *Resolver) ResolveWorktreePath(ctx expr.Context) (string, *SourceRule, error) {
	matched, err := r.FindSourceRule(ctx)
	if err != nil {
		return "", nil, err
	}

	tmpl := r.Defaults.Worktrees
	if matched != nil && matched.Worktrees != "" {
		tmpl = matched.Worktrees
	}

	p, err := expandPath(tmpl, ctx)
	if err != nil {
		return "", nil, err
	}

	return p, matched, nil
}

// MatchProjects returns every project rule whose predicate holds for ctx, in
// declaration order. Project predicates use the project scope, so they can
// inspect repository contents.
func (r *Resolver) MatchProjects(ctx expr.Context) ([]*ProjectRule, error) {
	table := expr.NewTable(expr.ScopeProject, ctx)

	var matched []*ProjectRule

	for i := range r.Projects {
		pr := &r.Projects[i]
		if pr.Predicate != "" {
			ok, err := expr.EvaluatePredicate(pr.Predicate, table)
			if err != nil {
				return nil, fmt.Errorf("project %q: %w", pr.Name, err)
			}

			if !ok {
				continue
			}
		}

		matched = append(matched, pr)
	}

	return matched, nil
}

// SourceActions flattens the sourceActions of every matching project rule.
func (r *Resolver) SourceActions(ctx expr.Context) ([]action.Action, error) {
	matched, err := r.MatchProjects(ctx)
	if err != nil {
		return nil, err
	}

	var actions []action.Action
	for _, pr := range matched {
		actions = append(actions, pr.SourceActions...)
	}

	return actions, nil
}

// WorktreeActions flattens the worktreeActions of every matching project
// rule.
func (r *Resolver) WorktreeActions(ctx expr.Context) ([]action.Action, error) {
	matched, err := r.MatchProjects(ctx)
	if err != nil {
		return nil, err
	}

	var actions []action.Action
	for _, pr := range matched {
		actions = append(actions, pr.WorktreeActions...)
	}

	return actions, nil
}

// Validate checks every rule and requires both default templates.
func (r *Resolver) Validate() error {
	if r.Defaults.Sources == "" {
		return fmt.Errorf("defaults.sources template is required")
	}

	if r.Defaults.Worktrees == "" {
		return fmt.Errorf("defaults.worktrees template is required")
	}

	for i := range r.Sources {
		if err := r.Sources[i].Validate(); err != nil {
			return err
		}
	}

	for i := range r.Projects {
		if err := r.Projects[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// expandPath expands a path template and resolves a leading tilde against
// the user's home directory.
func expandPath(tmpl string, ctx expr.Context) (string, error) {
	p, err := template.Expand(tmpl, ctx, expr.ScopePath)
	if err != nil {
		return "", err
	}

	return template.ExpandHome(p)
}
