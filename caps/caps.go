// Package caps parses DDC/CI capability strings into structured documents.
//
// Capability strings use a nested-parenthesis grammar of tagged groups,
// e.g.:
//
//	(type(lcd)model(P2715Q)cmds(1 2 3)vcp(16 18 96(27 15 17)))
//
// Tags are case-insensitive. Within a group, entries are numeric feature
// codes optionally followed by a parenthesized list of numeric parameter
// codes; anything else is preserved verbatim as an opaque entry rather than
// failing the parse.
package caps

import (
	"fmt"
	"strconv"
	"strings"
)

// Document is a parsed capability string.
type Document struct {
	// Type and Model are lifted from their tags when present.
	Type  string
	Model string

	// Groups holds the remaining tags in document order.
	Groups []Group
}

// Group returns the named group, matched case-insensitively.
func (d *Document) Group(name string) (Group, bool) {
	for _, g := range d.Groups {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Group{}, false
}

// Group is one tagged group of entries.
type Group struct {
	Name    string
	Entries []Entry
}

// Entry is one item in a group: a feature code with optional parameter
// values, or an opaque token for non-standard syntax.
type Entry struct {
	Code   int
	Values []int

	// Opaque holds the verbatim token when the entry did not parse as a
	// code. Code and Values are meaningless in that case.
	Opaque string
}

// IsOpaque reports whether the entry carries unparsed syntax.
func (e Entry) IsOpaque() bool {
	return e.Opaque != ""
}

// Parse parses a raw capability string. Unbalanced parentheses fail the
// parse; unknown syntax inside a group does not.
func Parse(raw string) (*Document, error) {
	body := strings.TrimSpace(raw)

	// Most monitors wrap the whole string in one outer group.
	if strings.HasPrefix(body, "(") {
		inner, rest, err := balanced(body)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(rest) != "" {
			return nil, fmt.Errorf("caps: trailing data after outer group: %q", rest)
		}
		body = inner
	}

	doc := &Document{}
	for {
		body = strings.TrimSpace(body)
		if body == "" {
			return doc, nil
		}

		open := strings.IndexByte(body, '(')
		if open < 0 {
			return nil, fmt.Errorf("caps: tag %q has no group", strings.TrimSpace(body))
		}
		tag := strings.TrimSpace(body[:open])
		if tag == "" {
			return nil, fmt.Errorf("caps: group without a tag")
		}

		inner, rest, err := balanced(body[open:])
		if err != nil {
			return nil, err
		}
		body = rest

		switch strings.ToLower(tag) {
		case "type":
			doc.Type = strings.TrimSpace(inner)
		case "model":
			doc.Model = strings.TrimSpace(inner)
		default:
			doc.Groups = append(doc.Groups, parseGroup(tag, inner))
		}
	}
}

// balanced consumes one parenthesized group from the front of s and
// returns its contents and the remainder.
func balanced(s string) (inner, rest string, err error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("caps: unbalanced parentheses in %q", s)
}

func parseGroup(name, body string) Group {
	g := Group{Name: name}

	for {
		body = strings.TrimSpace(body)
		if body == "" {
			return g
		}

		// A list with no preceding token is kept opaque.
		if body[0] == '(' {
			inner, rest, err := balanced(body)
			if err != nil {
				g.Entries = append(g.Entries, Entry{Opaque: body})
				return g
			}
			g.Entries = append(g.Entries, Entry{Opaque: "(" + inner + ")"})
			body = rest
			continue
		}

		// One token, optionally followed by a value list.
		end := len(body)
		for i := 0; i < len(body); i++ {
			if body[i] == ' ' || body[i] == '\t' || body[i] == '\n' || body[i] == '\r' || body[i] == '(' {
				end = i
				break
			}
		}
		token := body[:end]
		body = body[end:]

		var list string
		var hasList bool
		if next := strings.TrimSpace(body); strings.HasPrefix(next, "(") {
			inner, rest, err := balanced(next)
			if err != nil {
				// Trailing garbage; keep it opaque and stop.
				g.Entries = append(g.Entries, Entry{Opaque: token + next})
				return g
			}
			list, hasList = inner, true
			body = rest
		}

		entry, ok := parseEntry(token, list, hasList)
		if !ok {
			raw := token
			if hasList {
				raw += "(" + list + ")"
			}
			entry = Entry{Opaque: raw}
		}
		g.Entries = append(g.Entries, entry)
	}
}

func parseEntry(token, list string, hasList bool) (Entry, bool) {
	code, err := strconv.Atoi(token)
	if err != nil || code < 0 {
		return Entry{}, false
	}

	entry := Entry{Code: code}
	if !hasList {
		return entry, true
	}
	for _, field := range strings.Fields(list) {
		value, err := strconv.Atoi(field)
		if err != nil || value < 0 {
			return Entry{}, false
		}
		entry.Values = append(entry.Values, value)
	}
	return entry, true
}
