package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindTemplate_NoPlaceholders(t *testing.T) {
	out, err := BindTemplate("calexp", MapLookup(nil))

	require.NoError(t, err)
	assert.Equal(t, "calexp", out)
}

func TestBindTemplate_SubstitutesAll(t *testing.T) {
	lookup := MapLookup(map[string]string{
		"coaddName": "deep",
		"warpType":  "direct",
	})

	out, err := BindTemplate("{coaddName}Coadd_{warpType}Warp", lookup)

	require.NoError(t, err)
	assert.Equal(t, "deepCoadd_directWarp", out)
}

func TestBindTemplate_RepeatedIdentifier(t *testing.T) {
	lookup := MapLookup(map[string]string{"x": "a"})

	out, err := BindTemplate("{x}_{x}", lookup)

	require.NoError(t, err)
	assert.Equal(t, "a_a", out)
}

func TestBindTemplate_UnresolvedIdentifier(t *testing.T) {
	_, err := BindTemplate("{coaddName}Coadd", MapLookup(nil))

	require.Error(t, err)
	assert.True(t, IsUnresolvedTemplateError(err))

	var ute *UnresolvedTemplateError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "coaddName", ute.Identifier)
	assert.Equal(t, "{coaddName}Coadd", ute.Template)
}

func TestBindTemplate_Malformed(t *testing.T) {
	cases := []string{
		"{unterminated",
		"{}",
		"dangling}brace",
		"dangling}brace{x}",
		"{x}then}stray",
		"{bad ident}",
	}
	for _, template := range cases {
		_, err := BindTemplate(template, MapLookup(nil))
		assert.Error(t, err, "template %q", template)
		assert.False(t, IsUnresolvedTemplateError(err), "template %q", template)
	}
}

func TestTemplateIdentifiers_Order(t *testing.T) {
	idents, err := TemplateIdentifiers("{b}x{a}y{b}")

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "b"}, idents)
}

func TestChainLookup_Precedence(t *testing.T) {
	override := MapLookup(map[string]string{"coaddName": "goodSeeing"})
	defaults := MapLookup(map[string]string{"coaddName": "deep", "warpType": "direct"})

	chain := ChainLookup(override, defaults)

	v, ok := chain("coaddName")
	assert.True(t, ok)
	assert.Equal(t, "goodSeeing", v)

	v, ok = chain("warpType")
	assert.True(t, ok)
	assert.Equal(t, "direct", v)

	_, ok = chain("missing")
	assert.False(t, ok)
}

func TestChainLookup_SkipsNilLinks(t *testing.T) {
	chain := ChainLookup(nil, MapLookup(map[string]string{"x": "1"}))

	v, ok := chain("x")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}
