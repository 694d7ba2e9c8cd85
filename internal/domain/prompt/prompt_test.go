package prompt_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/twig/internal/domain/prompt"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"code:review", false},
		{"my_lib:a-b", false},
		{"review", true},
		{":review", true},
		{"code:", true},
		{"a:b:c", true},
		{"", true},
	}
	for _, tt := range tests {
		n, err := prompt.ParseName(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, prompt.ErrInvalidName, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.in, n.String())
	}
}

func TestQualifiedName_Parts(t *testing.T) {
	n := prompt.Qualify("code", "review")
	assert.Equal(t, prompt.QualifiedName("code:review"), n)
	assert.Equal(t, "code", n.Library())
	assert.Equal(t, "review", n.Prompt())
}

func TestNewValue_Coercion(t *testing.T) {
	tests := []struct {
		raw    any
		kind   prompt.Kind
		text   string
		native any
	}{
		{nil, prompt.KindNull, "", nil},
		{"World", prompt.KindString, "World", "World"},
		{"", prompt.KindString, "", ""},
		{true, prompt.KindBool, "true", true},
		{false, prompt.KindBool, "false", false},
		{42, prompt.KindNumber, "42", int64(42)},
		{int64(-7), prompt.KindNumber, "-7", int64(-7)},
		{2.5, prompt.KindNumber, "2.5", 2.5},
		{float64(3), prompt.KindNumber, "3", int64(3)},
		{json.Number("10"), prompt.KindNumber, "10", int64(10)},
		{[]any{"a", 1}, prompt.KindString, `["a",1]`, `["a",1]`},
		{map[string]any{"k": "v"}, prompt.KindString, `{"k":"v"}`, `{"k":"v"}`},
	}
	for _, tt := range tests {
		v, err := prompt.NewValue(tt.raw)
		require.NoError(t, err, "%#v", tt.raw)
		assert.Equal(t, tt.kind, v.Kind(), "%#v", tt.raw)
		assert.Equal(t, tt.text, v.String(), "%#v", tt.raw)
		assert.Equal(t, tt.native, v.Native(), "%#v", tt.raw)
	}
}

func TestValues_RejectsUnencodable(t *testing.T) {
	_, err := prompt.Values(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `argument "ch"`)
}

func TestStringValues(t *testing.T) {
	got := prompt.StringValues(map[string]string{"name": "World"})
	assert.Equal(t, prompt.String("World"), got["name"])
}

func TestMissingArgumentError(t *testing.T) {
	var err error = &prompt.MissingArgumentError{Argument: "name"}
	assert.True(t, errors.Is(err, prompt.ErrMissingArgument))
	assert.Equal(t, "missing required argument: name", err.Error())
}

func TestMetadata_RequiredAndClone(t *testing.T) {
	m := prompt.Metadata{Arguments: []prompt.Argument{
		{Name: "a", Required: true},
		{Name: "b"},
		{Name: "c", Required: true},
	}}
	assert.Equal(t, []string{"a", "c"}, m.Required())

	c := m.Clone()
	c.Arguments[0].Name = "changed"
	assert.Equal(t, "a", m.Arguments[0].Name)
}
