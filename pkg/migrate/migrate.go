// Package migrate relocates existing clones and worktrees to their
// rule-resolved locations.
package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/macropower/grove/pkg/expr"
	"github.com/macropower/grove/pkg/log"
	"github.com/macropower/grove/pkg/rule"
	"github.com/macropower/grove/pkg/uri"
)

// Repo is one repository found by [Scan].
type Repo struct {
	// Path is the work tree root.
	Path string
	// IsWorktree reports whether .git is a gitdir pointer file rather than
	// a directory.
	IsWorktree bool
}

// Scan walks root looking for git repositories. It does not descend into
// repositories, so nested checkouts inside a work tree are not reported.
func Scan(root string) ([]Repo, error) {
	var repos []Repo

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		gitPath := filepath.Join(path, ".git")

		info, statErr := os.Stat(gitPath)
		if statErr != nil {
			return nil
		}

		repos = append(repos, Repo{
			Path:       path,
			IsWorktree: !info.IsDir(),
		})

		return fs.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return repos, nil
}

// Move is one planned relocation.
type Move struct {
	From       string
	To         string
	IsWorktree bool
}

// Plan is the ordered set of moves for one migration run. Source
// repositories are planned before their worktrees so that repairs run
// against the final layout.
type Plan struct {
	Moves   []Move
	Skipped []string
}

// Inspector is the subset of git operations planning needs. Satisfied by
// [github.com/macropower/grove/pkg/git.Client].
type Inspector interface {
	RemoteURL(ctx context.Context, dir string) (string, error)
	CurrentBranch(ctx context.Context, dir string) (string, error)
	SourceRoot(ctx context.Context, dir string) (string, error)
}

// Planner resolves scanned repositories against the rule set.
type Planner struct {
	git      Inspector
	resolver *rule.Resolver
	tags     map[string]string
}

// NewPlanner creates a [Planner].
func NewPlanner(g Inspector, resolver *rule.Resolver, tags map[string]string) *Planner {
	return &Planner{
		git:      g,
		resolver: resolver,
		tags:     tags,
	}
}

// Plan computes the moves for repos. Repositories without an origin remote
// are skipped and reported in [Plan.Skipped].
func (p *Planner) Plan(ctx context.Context, repos []Repo) (*Plan, error) {
	plan := &Plan{}

	// Sources first, then worktrees.
	for _, wantWorktree := range []bool{false, true} {
		for _, repo := range repos {
			if repo.IsWorktree != wantWorktree {
				continue
			}

			if err := p.planOne(ctx, repo, plan); err != nil {
				return nil, err
			}
		}
	}

	return plan, nil
}

func (p *Planner) planOne(ctx context.Context, repo Repo, plan *Plan) error {
	remote, err := p.git.RemoteURL(ctx, repo.Path)
	if err != nil {
		log.WithContext(ctx).WarnContext(ctx, "skipping repository without origin remote",
			slog.String("path", repo.Path),
		)

		plan.Skipped = append(plan.Skipped, repo.Path)

		return nil
	}

	u, err := uri.Parse(remote)
	if err != nil {
		return fmt.Errorf("%s: parse remote %q: %w", repo.Path, remote, err)
	}

	branch, err := p.git.CurrentBranch(ctx, repo.Path)
	if err != nil {
		return fmt.Errorf("%s: %w", repo.Path, err)
	}

	ectx := expr.Context{
		URI:    u,
		Branch: branch,
		Tags:   p.tags,
	}

	var target string

	if repo.IsWorktree {
		ectx.Worktree = worktreeName(branch)

		target, _, err = p.resolver.ResolveWorktreePath(ectx)
	} else {
		target, _, err = p.resolver.ResolveSourcePath(ectx)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", repo.Path, err)
	}

	if sameFile(repo.Path, target) {
		return nil
	}

	plan.Moves = append(plan.Moves, Move{
		From:       repo.Path,
		To:         target,
		IsWorktree: repo.IsWorktree,
	})

	return nil
}

// worktreeName derives the worktree name from its checked-out branch, the
// same normalization the add command uses.
func worktreeName(branch string) string {
	table := expr.NewTable(expr.ScopePath, expr.Context{Branch: branch})

	v, err := expr.Evaluate("norm_branch()", table)
	if err != nil {
		return branch
	}

	return v.Str()
}

func sameFile(a, b string) bool {
	aInfo, errA := os.Stat(a)
	bInfo, errB := os.Stat(b)

	if errA == nil && errB == nil {
		return os.SameFile(aInfo, bInfo)
	}

	return filepath.Clean(a) == filepath.Clean(b)
}
