package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/macropower/grove/api/v1beta1/configs"
	"github.com/macropower/grove/pkg/config"
	"github.com/macropower/grove/pkg/expr"
	"github.com/macropower/grove/pkg/rule"
)

// loadResolver loads and validates the configuration, then builds its rule
// resolver. A missing configuration file is not an error; the built-in
// defaults apply.
func loadResolver(ra *RootArgs) (*rule.Resolver, error) {
	path := ra.Config
	if path == "" {
		path = configs.GetPath()
	}

	loader, err := config.NewLoaderFromFile(path, configs.New, configs.DefaultValidator)
	if err != nil {
		if ra.Config == "" && errors.Is(err, fs.ErrNotExist) {
			return configs.New().Resolver(), nil
		}

		return nil, fmt.Errorf("read configuration: %w", err)
	}

	if err := loader.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg.Resolver(), nil
}

// parseTags converts repeated `key=value` flags into a tag map.
func parseTags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	tags := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tag %q, expected key=value", pair)
		}

		tags[key] = value
	}

	return tags, nil
}

// ruleName names the rule that supplied a path template, "defaults" when the
// fallback templates applied.
func ruleName(r *rule.SourceRule) string {
	if r == nil || r.Name == "" {
		return "defaults"
	}

	return r.Name
}

// worktreeName derives a worktree name from a branch using the same
// normalization templates use.
func worktreeName(branch string) string {
	table := expr.NewTable(expr.ScopePath, expr.Context{Branch: branch})

	v, err := expr.Evaluate("norm_branch()", table)
	if err != nil {
		return branch
	}

	return v.Str()
}
