package browser

import (
	"fmt"
	"strings"
)

// By is the kind of a selector.
type By string

// Selector kinds.
const (
	ByID    By = "id"
	ByClass By = "class"
	ByTag   By = "tag"
	ByCSS   By = "css"
)

// Selector locates elements by kind and value.
type Selector struct {
	By    By
	Value string
}

// ID selects by element identifier.
func ID(id string) Selector { return Selector{By: ByID, Value: id} }

// Class selects by a single class name.
func Class(class string) Selector { return Selector{By: ByClass, Value: class} }

// Tag selects by tag name.
func Tag(tag string) Selector { return Selector{By: ByTag, Value: tag} }

// CSS selects by a CSS selector.
func CSS(css string) Selector { return Selector{By: ByCSS, Value: css} }

// CSS returns the selector expressed as a CSS selector.
func (s Selector) CSS() string {
	switch s.By {
	case ByID:
		return "#" + escapeIdent(s.Value)
	case ByClass:
		return "." + escapeIdent(s.Value)
	case ByTag, ByCSS:
		return s.Value
	default:
		return s.Value
	}
}

// String implements fmt.Stringer.
func (s Selector) String() string {
	return fmt.Sprintf("%s=%q", s.By, s.Value)
}

// escapeIdent escapes characters that are not valid in a bare CSS identifier.
func escapeIdent(ident string) string {
	var sb strings.Builder
	for i, r := range ident {
		switch {
		case r == '-' || r == '_' || r >= 0x80:
			sb.WriteRune(r)
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				fmt.Fprintf(&sb, "\\%x ", r)
				continue
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
