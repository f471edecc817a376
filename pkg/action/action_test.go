package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/grove/pkg/action"
)

func TestActionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wantErr string
		act     action.Action
	}{
		{
			name: "command",
			act:  action.Action{Command: "direnv allow"},
		},
		{
			name: "absCopy",
			act:  action.Action{AbsCopy: []string{"~/templates/envrc", ".envrc"}},
		},
		{
			name: "relCopy single",
			act:  action.Action{RelCopy: []string{".envrc"}},
		},
		{
			name: "relCopy pair",
			act:  action.Action{RelCopy: []string{".envrc", ".envrc.local"}},
		},
		{
			name:    "empty",
			act:     action.Action{},
			wantErr: "exactly one of",
		},
		{
			name:    "multiple variants",
			act:     action.Action{Command: "x", RelCopy: []string{"y"}},
			wantErr: "multiple variants",
		},
		{
			name:    "absCopy wrong arity",
			act:     action.Action{AbsCopy: []string{"only-src"}},
			wantErr: "absCopy must be",
		},
		{
			name:    "relCopy too many",
			act:     action.Action{RelCopy: []string{"a", "b", "c"}},
			wantErr: "relCopy must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.act.Validate()

			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
