package library_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/twig/internal/adapter/fs/library"
	domainprompt "github.com/alanyang/twig/internal/domain/prompt"
)

func writeConfig(t *testing.T, root, dir, body string) string {
	t.Helper()
	libDir := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(libDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(libDir, library.ConfigFile), []byte(body), 0o600))
	return libDir
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"My-Code Lib": "my_code_lib",
		"__MyLib__":   "mylib",
		"_MyLib_":     "mylib",
		"My_Code_Lib": "my_code_lib",
		"My.Code.Lib": "my_code_lib",
		"lib123":      "lib123",
		"123lib":      "123lib",
		"---":         "",
		"Ünïcode":     "ünïcode",
		"lib²":        "lib²",
		"v½ notes":    "v½_notes",
		"Ⅻ-lib":       "ⅻ_lib",
		"lib٣":        "lib٣",
	}
	for in, want := range tests {
		assert.Equal(t, want, library.Normalize(in), in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"My-Code Lib", "__x__", "a..b", "Ünïcode-Ω", " spaced out ", "", "İstanbul"} {
		once := library.Normalize(in)
		assert.Equal(t, once, library.Normalize(once), in)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	libs, failures := library.Discover(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Empty(t, libs)
	assert.Empty(t, failures)
}

func TestDiscover_SkipsMalformedConfig(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "bad_lib", "[prompts.test\n  # Missing closing bracket")
	writeConfig(t, root, "good_lib", "[prompts.test]\ndescription = \"A good prompt\"")

	libs, failures := library.Discover(root)
	require.Len(t, libs, 1)
	assert.Equal(t, "good_lib", libs[0].Name)
	assert.Equal(t, "A good prompt", libs[0].Prompts["test"].Description)

	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], domainprompt.ErrInvalidConfig)
	assert.Contains(t, failures[0].Error(), "bad_lib")
}

func TestDiscover_IgnoresDirsWithoutConfigAndFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "no_config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.toml"), []byte("x = 1"), 0o600))
	writeConfig(t, root, "My-Code Lib", "")

	libs, failures := library.Discover(root)
	assert.Empty(t, failures)
	require.Len(t, libs, 1)
	assert.Equal(t, "my_code_lib", libs[0].Name)
	assert.Empty(t, libs[0].Prompts)
	assert.Equal(t, filepath.Join(root, "My-Code Lib"), libs[0].Root)
}

func TestDiscover_FirstDiscoveredWinsOnCollision(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "My-Lib", "[prompts.a]\ndescription = \"first\"")
	writeConfig(t, root, "my_lib", "[prompts.b]\ndescription = \"second\"")

	libs, failures := library.Discover(root)
	require.Len(t, libs, 1)
	assert.Equal(t, "my_lib", libs[0].Name)
	assert.Contains(t, libs[0].Prompts, "a")
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error(), "already used")
}

func TestLoad_ParsesOrderedArguments(t *testing.T) {
	root := t.TempDir()
	dir := writeConfig(t, root, "code", `
[prompts.review]
description = "Review code"
arguments = [
  { name = "language", description = "Programming language", required = true },
  { name = "focus" },
]
`)
	lib, err := library.Load(dir)
	require.NoError(t, err)
	def := lib.Prompts["review"]
	assert.Equal(t, "Review code", def.Description)
	require.Len(t, def.Arguments, 2)
	assert.Equal(t, domainprompt.Argument{Name: "language", Description: "Programming language", Required: true}, def.Arguments[0])
	assert.Equal(t, domainprompt.Argument{Name: "focus"}, def.Arguments[1])
}

func TestLoad_RejectsInvalidDeclarations(t *testing.T) {
	tests := map[string]string{
		"duplicate argument": "[prompts.p]\ndescription = \"d\"\narguments = [{ name = \"a\" }, { name = \"a\" }]",
		"unnamed argument":   "[prompts.p]\ndescription = \"d\"\narguments = [{ required = true }]",
		"colon in name":      "[prompts.\"a:b\"]\ndescription = \"d\"",
		"wrong type":         "[prompts.p]\ndescription = 3",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			dir := writeConfig(t, t.TempDir(), "lib", body)
			_, err := library.Load(dir)
			assert.ErrorIs(t, err, domainprompt.ErrInvalidConfig)
		})
	}
}
