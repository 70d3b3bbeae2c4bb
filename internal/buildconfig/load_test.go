package buildconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EntryForms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want RawEntries
	}{
		{
			name: "single path",
			doc:  `entry: ./src/index.js`,
			want: RawEntries{{Name: "main", Import: "./src/index.js"}},
		},
		{
			name: "mapping keeps declaration order",
			doc: `
entry:
  main: ./src/index.js
  admin: ./src/admin.js`,
			want: RawEntries{
				{Name: "main", Import: "./src/index.js"},
				{Name: "admin", Import: "./src/admin.js"},
			},
		},
		{
			name: "mapping with descriptor",
			doc: `
entry:
  main:
    import: ./src/index.js`,
			want: RawEntries{{Name: "main", Import: "./src/index.js"}},
		},
		{
			name: "list keeps declaration order",
			doc: `
entry:
  - name: main
    import: ./src/index.js
  - name: admin
    import: ./src/admin.js`,
			want: RawEntries{
				{Name: "main", Import: "./src/index.js"},
				{Name: "admin", Import: "./src/admin.js"},
			},
		},
		{
			name: "mapping descriptor name is the key",
			doc: `
entry:
  admin:
    name: other
    import: ./src/admin.js`,
			want: RawEntries{{Name: "admin", Import: "./src/admin.js"}},
		},
		{
			name: "json document",
			doc:  `{"entry": {"main": "./src/index.js"}}`,
			want: RawEntries{{Name: "main", Import: "./src/index.js"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Load([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, raw.Entry)
		})
	}
}

func TestLoad_UseForms(t *testing.T) {
	raw, err := Load([]byte(`
module:
  rules:
    - test: "*.js"
      use: babel-loader
    - test: "*.css"
      use: [style-loader, {loader: css-loader, options: {modules: true}}]
    - test: "*.ts"
      use:
        loader: ts-loader
        options:
          transpileOnly: true
`))
	require.NoError(t, err)
	require.Len(t, raw.Module.Rules, 3)

	assert.Equal(t, RawUses{{Loader: "babel-loader"}}, raw.Module.Rules[0].Use)
	assert.Equal(t, RawUses{
		{Loader: "style-loader"},
		{Loader: "css-loader", Options: map[string]any{"modules": true}},
	}, raw.Module.Rules[1].Use)
	assert.Equal(t, RawUses{{Loader: "ts-loader", Options: map[string]any{"transpileOnly": true}}}, raw.Module.Rules[2].Use)
}

func TestLoad_Empty(t *testing.T) {
	raw, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, RawConfig{}, raw)

	cfg, err := Resolve(raw)
	require.NoError(t, err)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
}

func TestLoad_DuplicateEntriesReachResolve(t *testing.T) {
	raw, err := Load([]byte(`
entry:
  - name: main
    import: ./a.js
  - name: main
    import: ./b.js
output:
  path: /dist
`))
	require.NoError(t, err)

	_, err = Resolve(raw)
	require.ErrorIs(t, err, ErrDuplicateEntryName)
}

func TestLoad_DuplicateMappingKeys(t *testing.T) {
	raw, err := Load([]byte(`
entry:
  main: ./a.js
  main: ./b.js
output:
  path: /dist
  filename: "[name].js"
`))
	require.NoError(t, err)
	assert.Equal(t, RawEntries{
		{Name: "main", Import: "./a.js"},
		{Name: "main", Import: "./b.js"},
	}, raw.Entry)

	_, err = Resolve(raw)
	require.ErrorIs(t, err, ErrDuplicateEntryName)

	verrs := ValidationErrors(err)
	require.Len(t, verrs, 1)
	assert.Equal(t, DuplicateEntryName, verrs[0].Kind)
	assert.Equal(t, "entry.main", verrs[0].Field)
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{name: "unknown mode", doc: `mode: none`, field: "mode"},
		{name: "entry boolean", doc: `entry: true`, field: "entry"},
		{name: "rule unknown key", doc: "module:\n  rules:\n    - test: '*.js'\n      loader: babel-loader", field: "module.rules.0"},
		{name: "output not an object", doc: `output: dist`, field: "output"},
		{name: "entry mapping value", doc: "entry:\n  main: [./a.js]", field: "entry.main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidValue)

			fields := []string{}
			for _, ve := range ValidationErrors(err) {
				fields = append(fields, ve.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load([]byte("entry: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestResolveFile_Boilerplate(t *testing.T) {
	path := filepath.Join("testdata", "boilerplate", "webpack.yaml")
	base, err := filepath.Abs(filepath.Dir(path))
	require.NoError(t, err)

	cfg, err := ResolveFile(path, Resolver{})
	require.NoError(t, err)

	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, base, cfg.Context)
	assert.Equal(t, EntryMap{{Name: "main", Path: "./src/js/index.js"}}, cfg.Entries)
	assert.Equal(t, OutputSpec{
		Directory:       filepath.Join(base, "dist"),
		FilenamePattern: "[name].js",
		PublicPath:      "/",
	}, cfg.Output)

	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, `/\.js$/`, cfg.Rules[0].Test.String())
	require.NotNil(t, cfg.Rules[0].Exclude)
	assert.Equal(t, "node_modules", cfg.Rules[0].Exclude.String())
	assert.Equal(t, []Handler{{Name: "babel-loader", Options: map[string]any{"presets": []any{"env"}}}}, cfg.Rules[0].Handlers)
	assert.Nil(t, cfg.Rules[1].Exclude)
	assert.Equal(t, []Handler{{Name: "style-loader"}, {Name: "css-loader"}}, cfg.Rules[1].Handlers)

	assert.Len(t, OrderedRulesFor("src/js/index.js", cfg.Rules), 1)
	assert.Empty(t, OrderedRulesFor("node_modules/lodash/index.js", cfg.Rules))
	assert.Equal(t, []Handler{{Name: "style-loader"}, {Name: "css-loader"}}, HandlerChain("src/css/app.css", cfg.Rules))
}

func TestResolveFile_MissingEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entry: ./src/missing.js\n"), 0600))

	_, err := ResolveFile(path, Resolver{})
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestResolveFile_NotFound(t *testing.T) {
	_, err := ResolveFile(filepath.Join(t.TempDir(), "nope.yaml"), Resolver{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSchema(t *testing.T) {
	s := Schema()
	assert.Contains(t, string(s), `"$schema"`)

	s[0] = 'x'
	assert.NotEqual(t, byte('x'), Schema()[0])
}

func TestResolveFile_WithMode(t *testing.T) {
	path := filepath.Join("testdata", "boilerplate", "webpack.yaml")

	cfg, err := ResolveFile(path, Resolver{}, WithMode("production"))
	require.NoError(t, err)
	assert.Equal(t, ModeProduction, cfg.Mode)

	cfg, err = ResolveFile(path, Resolver{}, WithMode(""))
	require.NoError(t, err)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
}
