package safesql

import (
	"strings"
	"unicode/utf8"
)

// scanState tracks which lexical region the scanner is currently inside.
type scanState int

const (
	stateCode scanState = iota
	stateSingleQuote
	stateDoubleQuote
	stateLineComment
	stateBlockComment
	stateDollarQuote
)

// scanner walks a SQL string left to right, classifying each position as
// executable code or as part of a string literal, quoted identifier, comment,
// or PostgreSQL dollar-quoted body. Every exported search primitive owns its
// own scanner, so concurrent calls never share state.
type scanner struct {
	input string
	pos   int
	state scanState
	tag   string // active dollar-quote delimiter, e.g. "$$" or "$body$"
	depth int    // paren nesting depth, tracked only in Code state
}

func newScanner(input string) *scanner {
	return &scanner{input: input}
}

// tryEnter checks for a literal/comment opener at the current Code-state
// position. If one starts here it consumes the opening delimiter, switches
// state, and returns true.
func (s *scanner) tryEnter() bool {
	ch := s.input[s.pos]
	switch ch {
	case '\'':
		s.state = stateSingleQuote
		s.pos++
		return true
	case '"':
		s.state = stateDoubleQuote
		s.pos++
		return true
	case '-':
		if s.peekIs('-') {
			s.state = stateLineComment
			s.pos += 2
			return true
		}
	case '/':
		if s.peekIs('*') {
			s.state = stateBlockComment
			s.pos += 2
			return true
		}
	case '$':
		if delim, ok := matchDollarQuoteDelimiter(s.input, s.pos); ok {
			s.state = stateDollarQuote
			s.tag = delim
			s.pos += len(delim)
			return true
		}
	}
	return false
}

// advanceCode consumes one plain Code-state character, tracking paren depth.
func (s *scanner) advanceCode() {
	switch s.input[s.pos] {
	case '(':
		s.depth++
	case ')':
		s.depth--
	}
	s.pos++
}

// advanceNonCode consumes input while inside a literal or comment, returning
// to Code state when the closing delimiter is seen. Doubled quotes are escapes
// and stay inside the literal.
func (s *scanner) advanceNonCode() {
	ch := s.input[s.pos]
	switch s.state {
	case stateSingleQuote:
		if ch == '\'' {
			if s.peekIs('\'') {
				s.pos += 2
				return
			}
			s.state = stateCode
		}
		s.pos++
	case stateDoubleQuote:
		if ch == '"' {
			if s.peekIs('"') {
				s.pos += 2
				return
			}
			s.state = stateCode
		}
		s.pos++
	case stateLineComment:
		if ch == '\n' {
			s.state = stateCode
		}
		s.pos++
	case stateBlockComment:
		if ch == '*' && s.peekIs('/') {
			s.state = stateCode
			s.pos += 2
			return
		}
		s.pos++
	case stateDollarQuote:
		if strings.HasPrefix(s.input[s.pos:], s.tag) {
			s.pos += len(s.tag)
			s.state = stateCode
			s.tag = ""
			return
		}
		s.pos++
	default:
		s.pos++
	}
}

func (s *scanner) peekIs(ch byte) bool {
	return s.pos+1 < len(s.input) && s.input[s.pos+1] == ch
}

// matchDollarQuoteDelimiter reports the dollar-quote delimiter starting at
// start, e.g. "$$" or "$tag$". A bare "$" with no valid closing "$", or a tag
// containing non-identifier characters, is not a delimiter.
func matchDollarQuoteDelimiter(text string, start int) (string, bool) {
	if start >= len(text) || text[start] != '$' {
		return "", false
	}
	end := strings.IndexByte(text[start+1:], '$')
	if end < 0 {
		return "", false
	}
	end += start + 1
	for i := start + 1; i < end; i++ {
		if !isIdentChar(text[i]) {
			return "", false
		}
	}
	return text[start : end+1], true
}

// isIdentChar reports whether ch can appear in a SQL identifier. Bytes beyond
// ASCII are treated as identifier characters so multi-byte runes never create
// false word boundaries.
func isIdentChar(ch byte) bool {
	return ch == '_' ||
		('0' <= ch && ch <= '9') ||
		('a' <= ch && ch <= 'z') ||
		('A' <= ch && ch <= 'Z') ||
		ch >= utf8.RuneSelf
}

// asciiFoldEqual reports whether text equals upperKeyword under ASCII case
// folding. upperKeyword must be uppercase ASCII; any non-ASCII byte in text
// fails the comparison.
func asciiFoldEqual(text, upperKeyword string) bool {
	if len(text) != len(upperKeyword) {
		return false
	}
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if 'a' <= ch && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch != upperKeyword[i] {
			return false
		}
	}
	return true
}

// needleStaysInCode reports whether scanning the needle text from Code state
// never leaves Code state. A needle that would open a string or comment cannot
// match without straddling a state transition, so it never matches at all.
func needleStaysInCode(needle string) bool {
	n := newScanner(needle)
	for n.pos < len(n.input) {
		if n.state != stateCode {
			return false
		}
		if n.tryEnter() {
			return false
		}
		n.advanceCode()
	}
	return true
}

// FindOccurrences returns the offsets at which needle occurs in Code state,
// starting from offset from. maxMatches caps the result; pass 0 for no cap.
// Occurrences inside comments, quoted strings/identifiers, or dollar-quoted
// bodies are never reported, and a needle whose own text would open a literal
// or comment never matches.
func FindOccurrences(sql, needle string, from, maxMatches int) []int {
	if needle == "" {
		return nil
	}
	clean := needleStaysInCode(needle)

	s := newScanner(sql)
	if from > 0 {
		// Scan up to the starting offset so state is correct there.
		for s.pos < len(s.input) && s.pos < from {
			if s.state != stateCode {
				s.advanceNonCode()
				continue
			}
			if s.tryEnter() {
				continue
			}
			s.advanceCode()
		}
	}

	var offsets []int
	for s.pos < len(s.input) {
		if s.state != stateCode {
			s.advanceNonCode()
			continue
		}
		if s.tryEnter() {
			continue
		}
		if clean && strings.HasPrefix(s.input[s.pos:], needle) {
			offsets = append(offsets, s.pos)
			if maxMatches > 0 && len(offsets) >= maxMatches {
				return offsets
			}
			s.depth += strings.Count(needle, "(") - strings.Count(needle, ")")
			s.pos += len(needle)
			continue
		}
		s.advanceCode()
	}
	return offsets
}

// FindFirstKeyword returns the offset of the first Code-state occurrence of
// any of the keywords at a word boundary, scanning from offset from. Matching
// is case-insensitive. With topLevelOnly the match must also sit at paren
// nesting depth zero. Returns -1 when no keyword is found.
func FindFirstKeyword(sql string, keywords []string, from int, topLevelOnly bool) int {
	upperKeywords := make([]string, len(keywords))
	for i, kw := range keywords {
		upperKeywords[i] = strings.ToUpper(kw)
	}

	s := newScanner(sql)
	for s.pos < len(s.input) {
		if s.state != stateCode {
			s.advanceNonCode()
			continue
		}
		if s.tryEnter() {
			continue
		}
		if s.pos >= from && (!topLevelOnly || s.depth == 0) {
			for _, kw := range upperKeywords {
				if s.matchesWord(kw) {
					return s.pos
				}
			}
		}
		s.advanceCode()
	}
	return -1
}

// matchesWord reports whether the uppercase keyword occurs at the current
// position with word boundaries on both sides. The comparison folds ASCII
// case byte by byte; keywords are pure ASCII, so upper-casing the input is
// never needed (and would shift byte offsets for runes like U+017F whose
// uppercase form has a different encoded length).
func (s *scanner) matchesWord(upperKeyword string) bool {
	end := s.pos + len(upperKeyword)
	if end > len(s.input) || !asciiFoldEqual(s.input[s.pos:end], upperKeyword) {
		return false
	}
	if s.pos > 0 && isIdentChar(s.input[s.pos-1]) {
		return false
	}
	if end < len(s.input) && isIdentChar(s.input[end]) {
		return false
	}
	return true
}

// ParenthesesBalanced reports whether every Code-state "(" has a matching
// Code-state ")" and the running depth never goes negative. Parens inside
// literals and comments are ignored. A truncated query such as
// "SELECT SUM(x FROM t;" is unbalanced.
func ParenthesesBalanced(sql string) bool {
	s := newScanner(sql)
	for s.pos < len(s.input) {
		if s.state != stateCode {
			s.advanceNonCode()
			continue
		}
		if s.tryEnter() {
			continue
		}
		s.advanceCode()
		if s.depth < 0 {
			return false
		}
	}
	return s.depth == 0
}
