package javadoc

import (
	"strings"
	"unicode"
)

// parser is a recursive-descent parser over one documentation
// comment. The comment arrives with its /** */ frame and per-line
// asterisk prefixes still in place; the parser strips both.
type parser struct {
	input []rune
	pos   int
	len   int
}

// Parse parses one documentation comment. It never fails: malformed
// markup degrades to plain text nodes.
func Parse(comment string) *DocComment {
	p := &parser{input: []rune(comment)}
	p.len = len(p.input)

	p.skipWhitespace()
	if p.match("/**") {
		p.advance(3)
	}
	p.skipLinePrefix()

	return &DocComment{
		Body:      p.parseContent(false),
		BlockTags: p.parseBlockTags(),
	}
}

// skipLinePrefix skips horizontal whitespace and the single asterisk
// that starts a comment line.
func (p *parser) skipLinePrefix() {
	p.skipSpaces()
	if p.peek() == '*' && p.peekAt(1) != '/' {
		p.advance(1)
		if p.peek() == ' ' {
			p.advance(1)
		}
	}
}

// parseContent parses rich text until a block tag or the end of the
// comment. Inside an inline tag it also stops at the unmatched
// closing brace.
func (p *parser) parseContent(inInlineTag bool) []Node {
	var nodes []Node
	var text strings.Builder
	depth := 0

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, Text{Content: text.String()})
			text.Reset()
		}
	}
	emit := func(node Node) {
		if node != nil {
			flush()
			nodes = append(nodes, node)
		}
	}

	for p.pos < p.len {
		ch := p.peek()
		if ch == '*' && p.peekAt(1) == '/' {
			break
		}
		if !inInlineTag && p.atBlockTag() {
			break
		}

		switch ch {
		case '\n', '\r':
			text.WriteRune('\n')
			p.advance(1)
			if ch == '\r' && p.peek() == '\n' {
				p.advance(1)
			}
			p.skipLinePrefix()

		case '{':
			if p.peekAt(1) == '@' {
				emit(p.parseInlineTag())
				continue
			}
			if inInlineTag {
				depth++
			}
			text.WriteRune(ch)
			p.advance(1)

		case '}':
			if inInlineTag {
				if depth == 0 {
					flush()
					return nodes
				}
				depth--
			}
			text.WriteRune(ch)
			p.advance(1)

		case '<':
			emit(p.parseHTML())

		case '&':
			emit(p.parseEntity())

		default:
			text.WriteRune(ch)
			p.advance(1)
		}
	}

	flush()
	return nodes
}

// atBlockTag reports whether the position sits on an @ that opens a
// block tag, i.e. nothing but whitespace and the line's asterisk
// prefix precedes it on its line.
func (p *parser) atBlockTag() bool {
	if p.peek() != '@' {
		return false
	}
	for i := p.pos - 1; i >= 0; i-- {
		switch ch := p.input[i]; ch {
		case '\n', '\r':
			return true
		case ' ', '\t':
			continue
		case '*':
			j := i - 1
			for j >= 0 && (p.input[j] == ' ' || p.input[j] == '\t') {
				j--
			}
			if j < 0 || p.input[j] == '\n' || p.input[j] == '\r' {
				return true
			}
			return false
		default:
			return false
		}
	}
	return true
}

func (p *parser) parseInlineTag() Node {
	p.advance(2) // {@
	name := p.readTagName()
	if name == "" {
		return Text{Content: "{@"}
	}
	p.skipSpaces()

	var node Node
	switch name {
	case "code":
		node = Code{Content: p.readBalanced()}
	case "literal":
		node = Literal{Content: p.readBalanced()}
	case "link", "linkplain":
		node = p.parseLinkTag(name == "linkplain")
	case "return":
		node = Return{Description: p.parseContent(true), Inline: true}
	default:
		node = InlineTag{Name: name, Content: p.readBalanced()}
	}

	if p.peek() == '}' {
		p.advance(1)
	}
	return node
}

func (p *parser) parseLinkTag(plain bool) Node {
	ref := p.readReference()
	p.skipSpaces()

	var label []Node
	if p.peek() != '}' {
		label = p.parseContent(true)
	}
	return Link{Reference: ref, Label: label, Plain: plain}
}

// parseHTML parses a start tag, end tag, or comment. Comments vanish;
// a bare < that opens nothing stays text.
func (p *parser) parseHTML() Node {
	if p.match("<!--") {
		p.advance(4)
		for p.pos < p.len && !p.match("-->") {
			p.advance(1)
		}
		p.advance(3)
		return nil
	}
	p.advance(1)

	if p.peek() == '/' {
		p.advance(1)
		name := p.readHTMLName()
		p.skipSpaces()
		if p.peek() == '>' {
			p.advance(1)
		}
		return EndElement{Name: name}
	}

	name := p.readHTMLName()
	if name == "" {
		return Text{Content: "<"}
	}
	attrs := p.parseHTMLAttributes()

	selfClose := false
	p.skipSpaces()
	if p.peek() == '/' {
		selfClose = true
		p.advance(1)
	}
	if p.peek() == '>' {
		p.advance(1)
	}
	return StartElement{Name: name, Attributes: attrs, SelfClose: selfClose}
}

func (p *parser) parseHTMLAttributes() []Attribute {
	var attrs []Attribute
	for {
		p.skipTagWhitespace()
		if p.pos >= p.len || p.peek() == '>' || p.peek() == '/' {
			break
		}
		name := p.readHTMLName()
		if name == "" {
			break
		}
		p.skipTagWhitespace()

		var value string
		if p.peek() == '=' {
			p.advance(1)
			p.skipTagWhitespace()
			if p.peek() == '"' || p.peek() == '\'' {
				value = p.readQuoted()
			} else {
				value = p.readAttrValue()
			}
		}
		attrs = append(attrs, Attribute{Name: name, Value: value})
	}
	return attrs
}

// skipTagWhitespace skips whitespace inside an HTML tag, including
// line breaks and the asterisk prefix of continuation lines.
func (p *parser) skipTagWhitespace() {
	for p.pos < p.len {
		switch ch := p.peek(); ch {
		case ' ', '\t':
			p.advance(1)
		case '\n', '\r':
			p.advance(1)
			if ch == '\r' && p.peek() == '\n' {
				p.advance(1)
			}
			p.skipLinePrefix()
		default:
			return
		}
	}
}

func (p *parser) parseEntity() Node {
	p.advance(1) // &
	start := p.pos
	if p.peek() == '#' {
		p.advance(1)
		if p.peek() == 'x' || p.peek() == 'X' {
			p.advance(1)
			for isHexDigit(p.peek()) {
				p.advance(1)
			}
		} else {
			for isDigit(p.peek()) {
				p.advance(1)
			}
		}
	} else {
		for unicode.IsLetter(p.peek()) {
			p.advance(1)
		}
	}
	name := string(p.input[start:p.pos])

	if p.peek() == ';' && name != "" && name != "#" {
		p.advance(1)
		return Entity{Name: name}
	}
	return Text{Content: "&" + name}
}

func (p *parser) parseBlockTags() []Node {
	var tags []Node
	for p.pos < p.len {
		p.skipWhitespace()
		p.skipLinePrefix()
		if p.match("*/") {
			break
		}
		if p.peek() != '@' {
			p.advance(1)
			continue
		}
		p.advance(1)
		name := p.readTagName()
		if name == "" {
			continue
		}
		p.skipSpaces()

		var tag Node
		switch name {
		case "param":
			tag = p.parseParamTag()
		case "return":
			tag = Return{Description: p.parseContent(false)}
		case "throws", "exception":
			exc := p.readReference()
			p.skipSpaces()
			tag = Throws{Exception: exc, Description: p.parseContent(false)}
		case "see":
			tag = p.parseSeeTag()
		case "since":
			tag = Since{Version: p.parseContent(false)}
		case "deprecated":
			tag = Deprecated{Description: p.parseContent(false)}
		default:
			tag = BlockTag{Name: name, Content: p.parseContent(false)}
		}
		tags = append(tags, tag)
	}
	return tags
}

func (p *parser) parseParamTag() Node {
	isTypeParam := false
	if p.peek() == '<' {
		isTypeParam = true
		p.advance(1)
	}
	name := p.readIdentifier()
	if isTypeParam && p.peek() == '>' {
		p.advance(1)
	}
	p.skipSpaces()
	return Param{Name: name, IsTypeParam: isTypeParam, Description: p.parseContent(false)}
}

func (p *parser) parseSeeTag() Node {
	switch p.peek() {
	case '"':
		return See{Reference: []Node{Text{Content: `"` + p.readQuoted() + `"`}}}
	case '<':
		return See{Reference: p.parseContent(false)}
	}
	ref := p.readReference()
	p.skipSpaces()
	rest := p.parseContent(false)
	return See{Reference: append([]Node{Text{Content: ref}}, rest...)}
}

func (p *parser) peek() rune {
	if p.pos >= p.len {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) peekAt(offset int) rune {
	if p.pos+offset >= p.len || p.pos+offset < 0 {
		return 0
	}
	return p.input[p.pos+offset]
}

func (p *parser) advance(n int) {
	p.pos += n
	if p.pos > p.len {
		p.pos = p.len
	}
}

func (p *parser) match(s string) bool {
	if p.pos+len(s) > p.len {
		return false
	}
	for i, ch := range s {
		if p.input[p.pos+i] != ch {
			return false
		}
	}
	return true
}

func (p *parser) skipWhitespace() {
	for p.pos < p.len && isSpace(p.peek()) {
		p.advance(1)
	}
}

func (p *parser) skipSpaces() {
	for p.peek() == ' ' || p.peek() == '\t' {
		p.advance(1)
	}
}

func (p *parser) readTagName() string {
	start := p.pos
	for p.pos < p.len && isNamePart(p.peek()) {
		p.advance(1)
	}
	return string(p.input[start:p.pos])
}

func (p *parser) readIdentifier() string {
	start := p.pos
	if p.pos < p.len && (unicode.IsLetter(p.peek()) || p.peek() == '_' || p.peek() == '$') {
		p.advance(1)
		for p.pos < p.len && isNamePart(p.peek()) {
			p.advance(1)
		}
	}
	return string(p.input[start:p.pos])
}

// readReference reads a package.Class#member(params) reference. It
// stops at a closing brace or at whitespace outside the parameter
// list, so "#resize(int, int)" stays in one piece.
func (p *parser) readReference() string {
	start := p.pos
	depth := 0
	for p.pos < p.len {
		switch ch := p.peek(); {
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case ch == '}', isSpace(ch) && depth == 0:
			return string(p.input[start:p.pos])
		}
		p.advance(1)
	}
	return string(p.input[start:p.pos])
}

func (p *parser) readQuoted() string {
	quote := p.peek()
	p.advance(1)
	start := p.pos
	for p.pos < p.len && p.peek() != quote {
		if p.peek() == '\\' && p.peekAt(1) == quote {
			p.advance(1)
		}
		p.advance(1)
	}
	s := string(p.input[start:p.pos])
	if p.peek() == quote {
		p.advance(1)
	}
	return s
}

func (p *parser) readAttrValue() string {
	start := p.pos
	for p.pos < p.len && !isSpace(p.peek()) && p.peek() != '>' && p.peek() != '}' {
		p.advance(1)
	}
	return string(p.input[start:p.pos])
}

func (p *parser) readHTMLName() string {
	start := p.pos
	for p.pos < p.len {
		ch := p.peek()
		if unicode.IsLetter(ch) || isDigit(ch) || ch == '-' || ch == '_' || ch == ':' {
			p.advance(1)
			continue
		}
		break
	}
	return string(p.input[start:p.pos])
}

// readBalanced reads raw content up to the matching closing brace of
// the enclosing inline tag, or the end of the comment.
func (p *parser) readBalanced() string {
	start := p.pos
	depth := 0
	for p.pos < p.len {
		switch ch := p.peek(); {
		case ch == '{':
			depth++
		case ch == '}':
			if depth == 0 {
				return trimLeadingSpace(string(p.input[start:p.pos]))
			}
			depth--
		case ch == '*' && p.peekAt(1) == '/':
			return trimLeadingSpace(string(p.input[start:p.pos]))
		}
		p.advance(1)
	}
	return trimLeadingSpace(string(p.input[start:p.pos]))
}

func trimLeadingSpace(s string) string {
	if strings.HasPrefix(s, " ") {
		return s[1:]
	}
	return s
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isNamePart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '$'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
