package organize

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Formatter expands an output template against reqres fields plus the
// engine-injected `num` collision counter. It is a pure function: the
// same (template, fields, num) always produces the same string.
//
// The template syntax is the `%(field)s`-style substitution used by the
// surrounding tool: a field
// reference is `%(name)s` for strings, `%(name)d` for `num`, or `%%` for a
// literal percent.
type Formatter struct {
	template string
}

// NewFormatter constructs a Formatter for the given output template.
func NewFormatter(template string) *Formatter {
	return &Formatter{template: template}
}

// Template returns the underlying template string.
func (f *Formatter) Template() string { return f.template }

// HasNum reports whether the template contains a `%(num)...` substitution.
// Used by the engine to pre-flight the "did you forget %(num)d" diagnostic
// and by tests exercising property 3 (template variance detection).
func (f *Formatter) HasNum() bool {
	return strings.Contains(f.template, "%(num)")
}

// Expand renders the template against metadata and num. Unknown field
// references expand to the literal field name in angle brackets rather
// than failing the whole placement — a missing optional header should not
// be fatal to organizing a record.
func (f *Formatter) Expand(metadata Reqres, num int) (string, error) {
	var out strings.Builder

	s := f.template

	for {
		i := strings.IndexByte(s, '%')
		if i < 0 {
			out.WriteString(s)

			break
		}

		out.WriteString(s[:i])
		s = s[i+1:]

		if s == "" {
			return "", fmt.Errorf("organize: output template %q ends with a bare %%", f.template)
		}

		if s[0] == '%' {
			out.WriteByte('%')
			s = s[1:]

			continue
		}

		if s[0] != '(' {
			return "", fmt.Errorf("organize: output template %q has a %% not followed by ( or %%", f.template)
		}

		close := strings.IndexByte(s, ')')
		if close < 0 {
			return "", fmt.Errorf("organize: output template %q has an unterminated %%(", f.template)
		}

		name := s[1:close]
		s = s[close+1:]

		if s == "" {
			return "", fmt.Errorf("organize: output template %q field %%(%s) missing a type letter", f.template, name)
		}

		verb := s[0]
		s = s[1:]

		value, err := expandField(metadata, name, verb, num)
		if err != nil {
			return "", err
		}

		out.WriteString(value)
	}

	// Normalize to NFC so archives built on different filesystems (HFS+'s
	// NFD-leaning decomposition vs. ext4/NTFS's passthrough) produce
	// byte-identical paths for the same logical name.
	return norm.NFC.String(out.String()), nil
}

func expandField(metadata Reqres, name string, verb byte, num int) (string, error) {
	if name == "num" {
		switch verb {
		case 'd':
			return strconv.Itoa(num), nil
		default:
			return "", fmt.Errorf("organize: field %%(num) must use %%d, got %%%c", verb)
		}
	}

	value, ok := metadata.Field(name)
	if !ok {
		return fmt.Sprintf("<%s>", name), nil
	}

	switch verb {
	case 's':
		return value, nil
	default:
		return "", fmt.Errorf("organize: field %%(%s) must use %%s, got %%%c", name, verb)
	}
}

// BaseKey expands the template with num=0. The seen counter keys on this
// value, so two records whose *non-num* fields are
// identical always collide on the same key regardless of what num they
// eventually land on.
func (f *Formatter) BaseKey(metadata Reqres) (string, error) {
	return f.Expand(metadata, 0)
}
