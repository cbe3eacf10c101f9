package connection

import (
	"fmt"
	"strings"
)

// Lookup resolves a template identifier to a value. The second return is
// false when the lookup has no value for the identifier, letting the next
// link in a chain try.
type Lookup func(identifier string) (string, bool)

// MapLookup returns a Lookup over a plain map. A nil map resolves
// nothing.
func MapLookup(m map[string]string) Lookup {
	return func(identifier string) (string, bool) {
		v, ok := m[identifier]
		return v, ok
	}
}

// ChainLookup returns a Lookup that tries each given lookup in order and
// returns the first hit. This is how resolution precedence is expressed:
// earlier links always win over later ones.
func ChainLookup(lookups ...Lookup) Lookup {
	return func(identifier string) (string, bool) {
		for _, l := range lookups {
			if l == nil {
				continue
			}
			if v, ok := l(identifier); ok {
				return v, true
			}
		}
		return "", false
	}
}

// BindTemplate substitutes every {identifier} placeholder in template via
// lookup. A template with no placeholders is returned unchanged. The
// function is pure: the same inputs always yield the same output.
//
// Returns an UnresolvedTemplateError when an identifier resolves to
// nothing, and a plain error for a malformed template.
func BindTemplate(template string, lookup Lookup) (string, error) {
	idents, err := TemplateIdentifiers(template)
	if err != nil {
		return "", err
	}
	if len(idents) == 0 {
		return template, nil
	}

	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		close := strings.IndexByte(rest[open:], '}')
		// TemplateIdentifiers already rejected unterminated placeholders.
		ident := rest[open+1 : open+close]
		value, ok := lookup(ident)
		if !ok {
			return "", &UnresolvedTemplateError{Template: template, Identifier: ident}
		}
		b.WriteString(rest[:open])
		b.WriteString(value)
		rest = rest[open+close+1:]
	}
}

// TemplateIdentifiers returns the placeholder identifiers of template in
// order of appearance, duplicates included. An unterminated or empty
// placeholder is an error.
func TemplateIdentifiers(template string) ([]string, error) {
	var idents []string
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			open = len(rest)
		}
		if strings.IndexByte(rest[:open], '}') >= 0 {
			return nil, fmt.Errorf("malformed template %q: %q without matching %q", template, "}", "{")
		}
		if open == len(rest) {
			return idents, nil
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			return nil, fmt.Errorf("malformed template %q: unterminated placeholder", template)
		}
		ident := rest[open+1 : open+close]
		if ident == "" {
			return nil, fmt.Errorf("malformed template %q: empty placeholder", template)
		}
		if strings.ContainsAny(ident, "{ ") {
			return nil, fmt.Errorf("malformed template %q: invalid placeholder %q", template, ident)
		}
		idents = append(idents, ident)
		rest = rest[open+close+1:]
	}
}
