package uri_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/grove/pkg/uri"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantProtocol string
		wantHost     string
		wantPort     string
		wantSegments []string
	}{
		{
			name:         "https github uri",
			input:        "https://github.com/user/repo.git",
			wantProtocol: "https",
			wantHost:     "github.com",
			wantSegments: []string{"user", "repo"},
		},
		{
			name:         "https uri without git suffix",
			input:        "https://github.com/user/repo",
			wantProtocol: "https",
			wantHost:     "github.com",
			wantSegments: []string{"user", "repo"},
		},
		{
			name:         "ssh uri standard format",
			input:        "ssh://git@github.com/user/repo.git",
			wantProtocol: "ssh",
			wantHost:     "github.com",
			wantSegments: []string{"user", "repo"},
		},
		{
			name:         "scp style ssh uri",
			input:        "git@github.com:user/repo.git",
			wantProtocol: "ssh",
			wantHost:     "github.com",
			wantSegments: []string{"user", "repo"},
		},
		{
			name:         "scp style with nested groups",
			input:        "git@gitlab.com:group/subgroup/project.git",
			wantProtocol: "ssh",
			wantHost:     "gitlab.com",
			wantSegments: []string{"group", "subgroup", "project"},
		},
		{
			name:         "http uri with custom port",
			input:        "http://git.example.com:8080/user/repo.git",
			wantProtocol: "http",
			wantHost:     "git.example.com",
			wantPort:     "8080",
			wantSegments: []string{"user", "repo"},
		},
		{
			name:         "git protocol uri",
			input:        "git://github.com/user/repo.git",
			wantProtocol: "git",
			wantHost:     "github.com",
			wantSegments: []string{"user", "repo"},
		},
		{
			name:         "file uri",
			input:        "file:///home/user/repos/project",
			wantProtocol: "file",
			wantHost:     "",
			wantSegments: []string{"home", "user", "repos", "project"},
		},
		{
			name:         "deeply nested path segments",
			input:        "https://gitlab.com/group/subgroup/subsubgroup/project.git",
			wantProtocol: "https",
			wantHost:     "gitlab.com",
			wantSegments: []string{"group", "subgroup", "subsubgroup", "project"},
		},
		{
			name:         "surrounding whitespace is trimmed",
			input:        "  https://github.com/user/repo.git  ",
			wantProtocol: "https",
			wantHost:     "github.com",
			wantSegments: []string{"user", "repo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := uri.Parse(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantProtocol, u.Protocol)
			assert.Equal(t, tt.wantHost, u.Host)
			assert.Equal(t, tt.wantPort, u.Port)
			assert.Equal(t, tt.wantSegments, u.Segments())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "empty uri",
			input:   "",
			wantErr: uri.ErrEmptyURI,
		},
		{
			name:    "whitespace only uri",
			input:   "   ",
			wantErr: uri.ErrEmptyURI,
		},
		{
			name:    "missing protocol",
			input:   "github.com/user/repo.git",
			wantErr: uri.ErrMissingScheme,
		},
		{
			name:    "missing path",
			input:   "https://github.com",
			wantErr: uri.ErrMissingPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := uri.Parse(tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestURI_Segment(t *testing.T) {
	t.Parallel()

	u, err := uri.Parse("https://gitlab.com/group/subgroup/project.git")
	require.NoError(t, err)

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{name: "first segment", index: 0, want: "group"},
		{name: "middle segment", index: 1, want: "subgroup"},
		{name: "last segment", index: -1, want: "project"},
		{name: "second to last", index: -2, want: "subgroup"},
		{name: "out of range positive", index: 3, want: ""},
		{name: "out of range negative", index: -4, want: ""},
		{name: "far out of range", index: 100, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, u.Segment(tt.index))
		})
	}
}

func TestURI_RepoNameAndOwner(t *testing.T) {
	t.Parallel()

	u, err := uri.Parse("git@github.com:acme/widgets.git")
	require.NoError(t, err)
	assert.Equal(t, "widgets", u.RepoName())
	assert.Equal(t, "acme", u.Owner())

	single, err := uri.Parse("file:///repo")
	require.NoError(t, err)
	assert.Equal(t, "repo", single.RepoName())
	assert.Empty(t, single.Owner())
}
