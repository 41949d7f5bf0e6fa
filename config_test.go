package notestore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/notestore"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(c *notestore.Config)
		expectErr   bool
	}{
		{description: "defaults", mutate: func(c *notestore.Config) {}},
		{description: "fs store", mutate: func(c *notestore.Config) {
			c.Store = notestore.StoreConfig{Kind: notestore.StoreKindFs, BaseURL: "mem://localhost/store"}
		}},
		{description: "fs store without url", mutate: func(c *notestore.Config) { c.Store.Kind = notestore.StoreKindFs }, expectErr: true},
		{description: "sqlite store", mutate: func(c *notestore.Config) {
			c.Store = notestore.StoreConfig{Kind: notestore.StoreKindSQLite, BaseURL: "/tmp/notestore"}
		}},
		{description: "sqlite store on mem url", mutate: func(c *notestore.Config) {
			c.Store = notestore.StoreConfig{Kind: notestore.StoreKindSQLite, BaseURL: "mem://localhost/store"}
		}, expectErr: true},
		{description: "unknown store", mutate: func(c *notestore.Config) { c.Store.Kind = "sql" }, expectErr: true},
		{description: "bad pattern", mutate: func(c *notestore.Config) { c.Parser.ChapterPattern = "[" }, expectErr: true},
		{description: "no workers", mutate: func(c *notestore.Config) { c.Import.Workers = 0 }, expectErr: true},
		{description: "bad extension", mutate: func(c *notestore.Config) { c.Import.Extensions = []string{"js"} }, expectErr: true},
		{description: "bad log level", mutate: func(c *notestore.Config) { c.Log.Level = "loud" }, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			cfg := notestore.DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	cfg, err := notestore.LoadConfig(ctx, "embed:///testdata/config.yaml", &embedFS)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, notestore.StoreKindMemory, cfg.Store.Kind)
	assert.Equal(t, 60, cfg.Parser.MaxHeadingLength)
	assert.Equal(t, 2, cfg.Import.Workers)
	assert.Equal(t, []string{".js", ".txt", ".md"}, cfg.Import.Extensions)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Parser.ChapterPattern)

	t.Setenv("NOTESTORE_TEST_KIND", notestore.StoreKindFs)
	_, err = notestore.LoadConfig(ctx, "embed:///testdata/config.yaml", &embedFS)
	assert.Error(t, err)

	t.Setenv("NOTESTORE_TEST_URL", "mem://localhost/config/store")
	cfg, err = notestore.LoadConfig(ctx, "embed:///testdata/config.yaml", &embedFS)
	if assert.NoError(t, err) {
		assert.Equal(t, "mem://localhost/config/store", cfg.Store.BaseURL)
	}
}
