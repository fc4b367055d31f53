// internal/browser/jsdom/selectors.go
package jsdom

import (
	"fmt"
	"strings"
)

// translateCSSToXPath converts the simple CSS selectors test scripts use into
// XPath. Supported: tag, #id, .class, [attr], [attr=value] with optional
// quotes, descendant (space) and child (>) combinators. Strings that already
// look like XPath pass through unchanged.
func translateCSSToXPath(css string) (string, error) {
	css = strings.TrimSpace(css)
	if css == "" {
		return "", fmt.Errorf("empty selector")
	}
	if css == "*" {
		return "//*", nil
	}
	if strings.HasPrefix(css, "/") || strings.HasPrefix(css, "./") || strings.HasPrefix(css, "(") {
		return css, nil
	}

	tokens, err := tokenizeSelector(css)
	if err != nil {
		return "", err
	}

	var xpath strings.Builder
	axis := "//"
	for _, tok := range tokens {
		if tok == ">" {
			if axis == "/" {
				return "", fmt.Errorf("invalid selector '%s': repeated combinator", css)
			}
			axis = "/"
			continue
		}
		step, err := compoundToXPath(tok)
		if err != nil {
			return "", fmt.Errorf("invalid selector '%s': %w", css, err)
		}
		xpath.WriteString(axis)
		xpath.WriteString(step)
		axis = "//"
	}
	if axis == "/" {
		return "", fmt.Errorf("invalid selector '%s': dangling combinator", css)
	}
	return xpath.String(), nil
}

// tokenizeSelector splits a selector into compounds and '>' combinators.
// Whitespace inside attribute brackets is kept.
func tokenizeSelector(css string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		depth  int
		quote  rune
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range css {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case depth > 0 && (r == '"' || r == '\''):
			quote = r
			cur.WriteRune(r)
		case r == '[':
			depth++
			cur.WriteRune(r)
		case r == ']':
			if depth == 0 {
				return nil, fmt.Errorf("invalid selector '%s': unbalanced ']'", css)
			}
			depth--
			cur.WriteRune(r)
		case depth == 0 && r == '>':
			flush()
			tokens = append(tokens, ">")
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if depth != 0 || quote != 0 {
		return nil, fmt.Errorf("invalid selector '%s': unterminated attribute", css)
	}
	flush()
	return tokens, nil
}

func compoundToXPath(tok string) (string, error) {
	tag := "*"
	var predicates []string

	rest := tok
	if i := strings.IndexAny(rest, "#.["); i != 0 {
		if i == -1 {
			i = len(rest)
		}
		tag = strings.ToLower(rest[:i])
		if !validName(tag) && tag != "*" {
			return "", fmt.Errorf("invalid tag name '%s'", tag)
		}
		rest = rest[i:]
	}

	for len(rest) > 0 {
		switch rest[0] {
		case '#', '.':
			end := strings.IndexAny(rest[1:], "#.[")
			if end == -1 {
				end = len(rest)
			} else {
				end++
			}
			name := rest[1:end]
			if name == "" {
				return "", fmt.Errorf("empty name in '%s'", tok)
			}
			if rest[0] == '#' {
				predicates = append(predicates, "@id="+xpathLiteral(name))
			} else {
				predicates = append(predicates, classPredicate(name))
			}
			rest = rest[end:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return "", fmt.Errorf("unterminated attribute in '%s'", tok)
			}
			pred, err := attributePredicate(rest[1:end])
			if err != nil {
				return "", err
			}
			predicates = append(predicates, pred)
			rest = rest[end+1:]
		default:
			return "", fmt.Errorf("unexpected '%c' in '%s'", rest[0], tok)
		}
	}

	if len(predicates) == 0 {
		return tag, nil
	}
	return tag + "[" + strings.Join(predicates, " and ") + "]", nil
}

func attributePredicate(body string) (string, error) {
	name, value, hasValue := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty attribute name")
	}
	if !hasValue {
		return "@" + name, nil
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	return "@" + name + "=" + xpathLiteral(value), nil
}

func classPredicate(class string) string {
	return "contains(concat(' ', normalize-space(@class), ' '), " + xpathLiteral(" "+class+" ") + ")"
}

// xpathLiteral quotes s as an XPath 1.0 string literal.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
