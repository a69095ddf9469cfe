package shortcode

import (
	"iter"
	"strings"
)

// Match is one enclosing shortcode occurrence. Offsets are byte positions in
// the scanned content; Full == content[Start:End] and
// Inner == content[InnerStart:InnerEnd].
type Match struct {
	Name          string
	Full          string
	RawAttributes string
	Inner         string
	Start         int
	End           int
	InnerStart    int
	InnerEnd      int
}

// Locate returns every enclosing [name ...]...[/name] occurrence in content,
// first to last. Nested openings of the same name are balanced against their
// closing tags, so only outermost occurrences are reported.
func Locate(content, name string) []Match {
	var matches []Match
	for match := range Matches(content, name) {
		matches = append(matches, match)
	}
	return matches
}

// Matches yields the same occurrences as Locate lazily. Callers can stop early.
func Matches(content, name string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		if name == "" {
			return
		}
		scanner := locator{content: content, name: name}
		pos := 0
		for {
			match, next, ok := scanner.next(pos)
			if !ok {
				return
			}
			pos = next
			if match == nil {
				continue
			}
			if !yield(*match) {
				return
			}
		}
	}
}

type locator struct {
	content string
	name    string
}

// next scans from pos. It returns the next usable match (nil when the opening
// at hand was skipped) and the position to resume from. ok is false once no
// opening tag remains.
func (l locator) next(pos int) (*Match, int, bool) {
	start, attrEnd, selfClosing, found := l.findOpening(pos)
	if !found {
		return nil, len(l.content), false
	}
	if selfClosing {
		return nil, attrEnd + 1, true
	}

	closeStart, closeEnd, closed := l.findClosing(attrEnd + 1)
	if !closed {
		return nil, attrEnd + 1, true
	}

	// [[name ...]...[/name]] is the escape form and is left as literal text.
	if start > 0 && l.content[start-1] == '[' && closeEnd < len(l.content) && l.content[closeEnd] == ']' {
		return nil, closeEnd + 1, true
	}

	return &Match{
		Name:          l.name,
		Full:          l.content[start:closeEnd],
		RawAttributes: l.content[start+1+len(l.name) : attrEnd],
		Inner:         l.content[attrEnd+1 : closeStart],
		Start:         start,
		End:           closeEnd,
		InnerStart:    attrEnd + 1,
		InnerEnd:      closeStart,
	}, closeEnd, true
}

// findOpening locates the next "[name" tag at or after pos whose name is not
// a prefix of a longer tag name. attrEnd is the index of the closing ']'.
func (l locator) findOpening(pos int) (start, attrEnd int, selfClosing, found bool) {
	open := "[" + l.name
	for pos < len(l.content) {
		idx := strings.Index(l.content[pos:], open)
		if idx < 0 {
			return 0, 0, false, false
		}
		start = pos + idx
		after := start + len(open)
		if after < len(l.content) && isNameChar(l.content[after]) {
			pos = after
			continue
		}
		end, ok := attributesEnd(l.content, after)
		if !ok {
			return 0, 0, false, false
		}
		return start, end, end > after && l.content[end-1] == '/', true
	}
	return 0, 0, false, false
}

// findClosing finds the "[/name]" balancing an opening whose body starts at
// pos, counting nested openings of the same name.
func (l locator) findClosing(pos int) (closeStart, closeEnd int, ok bool) {
	closing := "[/" + l.name + "]"
	depth := 1
	for pos < len(l.content) {
		closeIdx := strings.Index(l.content[pos:], closing)
		if closeIdx < 0 {
			return 0, 0, false
		}
		closeIdx += pos

		if start, attrEnd, selfClosing, found := l.findOpening(pos); found && start < closeIdx {
			if !selfClosing {
				depth++
			}
			pos = attrEnd + 1
			continue
		}

		depth--
		if depth == 0 {
			return closeIdx, closeIdx + len(closing), true
		}
		pos = closeIdx + len(closing)
	}
	return 0, 0, false
}

// attributesEnd returns the index of the ']' terminating an opening tag whose
// attributes begin at pos. Quoted values and balanced [...] pairs may contain
// ']'. A quote only opens a value after '=' or whitespace, so apostrophes in
// unquoted values do not swallow the tag; if the quote-aware scan still runs
// off the end, the first plain ']' is used.
func attributesEnd(content string, pos int) (int, bool) {
	depth := 0
	var quote byte
	for i := pos; i < len(content); i++ {
		ch := content[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case (ch == '"' || ch == '\'') && (content[i-1] == '=' || isSpace(content[i-1])):
			quote = ch
		case ch == '[':
			depth++
		case ch == ']':
			if depth == 0 {
				return i, true
			}
			depth--
		}
	}
	if idx := strings.IndexByte(content[pos:], ']'); idx >= 0 {
		return pos + idx, true
	}
	return 0, false
}
