package meta

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

type sample struct {
	Name    string `json:"name" yaml:"name"`
	Workers int    `json:"workers" yaml:"workers"`
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	baseURL := "mem://localhost/meta"
	t.Setenv("META_NAME", "notes")

	testCases := []struct {
		description string
		URL         string
		content     string
		expected    *sample
		expectErr   bool
	}{
		{
			description: "yaml with env expansion",
			URL:         "config.yaml",
			content:     "name: ${env.META_NAME}\nworkers: 2\n",
			expected:    &sample{Name: "notes", Workers: 2},
		},
		{
			description: "json by extension",
			URL:         "config.json",
			content:     `{"name":"json","workers":3}`,
			expected:    &sample{Name: "json", Workers: 3},
		},
		{
			description: "absolute url",
			URL:         baseURL + "/nested/abs.yml",
			content:     "name: abs\n",
			expected:    &sample{Name: "abs"},
		},
		{
			description: "invalid yaml",
			URL:         "broken.yaml",
			content:     "name: [",
			expectErr:   true,
		},
	}

	srv := New(fs, baseURL)
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			err := fs.Upload(ctx, srv.URL(tc.URL), file.DefaultFileOsMode, strings.NewReader(tc.content))
			if !assert.NoError(t, err) {
				return
			}
			actual := &sample{}
			err = srv.Load(ctx, tc.URL, actual)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}

	err := srv.Load(ctx, "missing.yaml", &sample{})
	assert.Error(t, err)
	exists, err := srv.Exists(ctx, "config.yaml")
	assert.NoError(t, err)
	assert.True(t, exists)
}
