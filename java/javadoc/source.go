package javadoc

import "strings"

// sourceScanner walks one .java file and pairs each documentation
// comment with the declaration that follows it. It is not a parser:
// it tracks braces, strings, and comments, which is enough to know
// the enclosing class and the shape of each member. Anything it
// cannot make sense of it steps over, losing at worst a comment.
type sourceScanner struct {
	input []byte
	pos   int

	pkg     string
	stack   []string
	pending string
	docs    map[string]*ClassDocs
}

func scanSource(input []byte, docs map[string]*ClassDocs) {
	s := &sourceScanner{input: input, docs: docs}
	s.scan()
}

func (s *sourceScanner) scan() {
	for s.pos < len(s.input) {
		s.skipGaps()
		switch ch := s.peek(); {
		case ch == 0:
			return
		case ch == ';':
			s.advance()
			s.pending = ""
		case ch == '}':
			s.advance()
			if len(s.stack) > 0 {
				s.stack = s.stack[:len(s.stack)-1]
			}
			s.pending = ""
		case ch == '{':
			// instance or static initializer block
			s.skipGroup('{', '}')
			s.pending = ""
		case ch == '@':
			s.scanAnnotation()
		case ch == '<':
			s.skipGenerics()
		case isJavaLetter(ch):
			s.scanWord(s.readWord())
		default:
			s.advance()
		}
	}
}

func (s *sourceScanner) scanWord(word string) {
	switch word {
	case "package":
		s.pkg = s.readQualifiedName()
		s.skipPast(';')
		s.pending = ""
	case "import":
		s.skipPast(';')
		s.pending = ""
	case "class", "interface", "enum":
		s.scanTypeDecl(word)
	case "record":
		// contextual keyword: a type declaration only when a name follows
		s.skipGaps()
		if isJavaLetter(s.peek()) {
			s.scanTypeDecl(word)
		} else {
			s.scanMember(word)
		}
	default:
		s.scanMember(word)
	}
}

// scanMember consumes one member declaration, starting after its
// first word. Modifiers, type names, and the member name all read as
// words; the first structural character decides what the member is.
func (s *sourceScanner) scanMember(first string) {
	last := first
	for s.pos < len(s.input) {
		s.skipGaps()
		switch ch := s.peek(); {
		case ch == 0:
			return
		case isJavaLetter(ch):
			word := s.readWord()
			switch word {
			case "class", "interface", "enum":
				s.scanTypeDecl(word)
				return
			case "record":
				s.skipGaps()
				if isJavaLetter(s.peek()) {
					s.scanTypeDecl(word)
					return
				}
			}
			last = word
		case ch == '.':
			s.advance()
		case ch == '<':
			s.skipGenerics()
		case ch == '[':
			s.skipPast(']')
		case ch == '@':
			s.scanAnnotation()
		case ch == '(':
			s.scanMethod(last)
			return
		case ch == '=' || ch == ',' || ch == ';':
			s.scanDeclarators(last)
			return
		case ch == '{':
			s.skipGroup('{', '}')
			s.pending = ""
			return
		case ch == '}':
			return
		default:
			s.advance()
		}
	}
}

func (s *sourceScanner) scanMethod(name string) {
	raw := s.pending
	s.pending = ""
	arity := s.skipParams()
	if len(s.stack) > 0 {
		if name == s.stack[len(s.stack)-1] {
			name = "<init>"
		}
		s.claimMethod(name, arity, raw)
	}
	s.skipPastBody()
}

// skipPastBody skips a throws clause or annotation default value and
// then the method body or the terminating semicolon.
func (s *sourceScanner) skipPastBody() {
	for s.pos < len(s.input) {
		s.skipGaps()
		switch ch := s.peek(); {
		case ch == 0 || ch == '}':
			return
		case ch == '{':
			s.skipGroup('{', '}')
			return
		case ch == ';':
			s.advance()
			return
		case isJavaLetter(ch):
			s.readWord()
		case ch == '<':
			s.skipGenerics()
		case ch == '@':
			s.scanAnnotation()
		default:
			s.advance()
		}
	}
}

// scanDeclarators consumes field declarators from the first name on.
// Every declarator of the statement shares the pending comment.
func (s *sourceScanner) scanDeclarators(first string) {
	raw := s.pending
	s.pending = ""
	name := first
	for s.pos < len(s.input) {
		s.skipGaps()
		switch s.peek() {
		case '=':
			s.advance()
			s.claimField(name, raw)
			if !s.skipInitializer() {
				return
			}
			s.skipGaps()
			name = s.readWord()
		case ',':
			s.advance()
			s.claimField(name, raw)
			s.skipGaps()
			name = s.readWord()
		case ';':
			s.advance()
			s.claimField(name, raw)
			return
		case '[':
			s.skipPast(']')
		default:
			return
		}
	}
}

func (s *sourceScanner) scanTypeDecl(kind string) {
	s.skipGaps()
	name := s.readWord()
	if name == "" {
		return
	}
	raw := s.pending
	s.pending = ""
	for s.pos < len(s.input) {
		s.skipGaps()
		switch ch := s.peek(); {
		case ch == 0 || ch == '}':
			return
		case ch == '{':
			s.advance()
			s.stack = append(s.stack, name)
			s.claimClass(raw)
			if kind == "enum" {
				s.scanEnumConstants()
			}
			return
		case ch == ';':
			s.advance()
			return
		case ch == '(':
			// record header
			s.skipGroup('(', ')')
		case ch == '<':
			s.skipGenerics()
		case ch == '@':
			s.scanAnnotation()
		case isJavaLetter(ch):
			s.readWord()
		default:
			s.advance()
		}
	}
}

// scanEnumConstants consumes the constant list at the start of an
// enum body, recording each constant's comment as a field comment.
// It stops after the semicolon that opens the member section, or
// before the brace that closes a constants-only body.
func (s *sourceScanner) scanEnumConstants() {
	for s.pos < len(s.input) {
		s.skipGaps()
		switch ch := s.peek(); {
		case ch == 0 || ch == '}':
			return
		case ch == ';':
			s.advance()
			s.pending = ""
			return
		case ch == '@':
			s.scanAnnotation()
		case isJavaLetter(ch):
			name := s.readWord()
			s.claimField(name, s.pending)
			s.pending = ""
			s.skipGaps()
			if s.peek() == '(' {
				s.skipGroup('(', ')')
				s.skipGaps()
			}
			if s.peek() == '{' {
				s.skipGroup('{', '}')
				s.skipGaps()
			}
			if s.peek() == ',' {
				s.advance()
			}
		default:
			s.advance()
		}
	}
}

func (s *sourceScanner) scanAnnotation() {
	s.advance() // @
	s.skipGaps()
	word := s.readWord()
	if word == "interface" {
		s.scanTypeDecl(word)
		return
	}
	for s.peek() == '.' {
		s.advance()
		s.readWord()
	}
	s.skipGaps()
	if s.peek() == '(' {
		s.skipGroup('(', ')')
	}
}

func (s *sourceScanner) qualifiedName() string {
	local := strings.Join(s.stack, "$")
	if s.pkg == "" {
		return local
	}
	return s.pkg + "." + local
}

func (s *sourceScanner) classDocs() *ClassDocs {
	name := s.qualifiedName()
	d := s.docs[name]
	if d == nil {
		d = newClassDocs()
		s.docs[name] = d
	}
	return d
}

func (s *sourceScanner) claimClass(raw string) {
	if raw == "" {
		return
	}
	if text := Render(Parse(raw)); text != "" {
		s.classDocs().Text = text
	}
}

func (s *sourceScanner) claimField(name, raw string) {
	if raw == "" || name == "" || len(s.stack) == 0 {
		return
	}
	if text := Render(Parse(raw)); text != "" {
		s.classDocs().Fields[name] = text
	}
}

func (s *sourceScanner) claimMethod(name string, arity int, raw string) {
	if raw == "" || name == "" {
		return
	}
	if text := Render(Parse(raw)); text != "" {
		s.classDocs().Methods[MemberKey{Name: name, Arity: arity}] = text
	}
}

// skipGaps skips whitespace and comments. A documentation comment
// becomes the pending comment for the next declaration; everything
// else is discarded.
func (s *sourceScanner) skipGaps() {
	for s.pos < len(s.input) {
		switch ch := s.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peekN(1) == '/':
			s.skipLineComment()
		case ch == '/' && s.peekN(1) == '*':
			if s.peekN(2) == '*' && s.peekN(3) != '/' {
				s.pending = s.readBlockComment()
			} else {
				s.skipBlockComment()
			}
		default:
			return
		}
	}
}

// skipComment skips one comment without capturing it. Used inside
// bodies and expressions, where a documentation comment documents
// nothing.
func (s *sourceScanner) skipComment() {
	if s.peekN(1) == '/' {
		s.skipLineComment()
	} else {
		s.skipBlockComment()
	}
}

func (s *sourceScanner) skipLineComment() {
	for s.pos < len(s.input) && s.peek() != '\n' {
		s.advance()
	}
}

func (s *sourceScanner) skipBlockComment() {
	s.advanceN(2)
	for s.pos < len(s.input) {
		if s.peek() == '*' && s.peekN(1) == '/' {
			s.advanceN(2)
			return
		}
		s.advance()
	}
}

func (s *sourceScanner) readBlockComment() string {
	start := s.pos
	s.skipBlockComment()
	return string(s.input[start:s.pos])
}

func (s *sourceScanner) readWord() string {
	start := s.pos
	for isJavaLetterOrDigit(s.peek()) {
		s.advance()
	}
	return string(s.input[start:s.pos])
}

func (s *sourceScanner) readQualifiedName() string {
	s.skipGaps()
	name := s.readWord()
	for s.peek() == '.' {
		s.advance()
		name += "." + s.readWord()
	}
	return name
}

func (s *sourceScanner) skipPast(delim byte) {
	for s.pos < len(s.input) {
		if s.advance() == delim {
			return
		}
	}
}

// skipParams skips a parenthesized parameter list and returns the
// number of parameters it declares. Nested brackets, generics, and
// annotation arguments do not contribute commas.
func (s *sourceScanner) skipParams() int {
	s.advance() // (
	args := 0
	sawAny := false
	depth := 0
	for s.pos < len(s.input) {
		ch := s.peek()
		if ch == '/' && (s.peekN(1) == '/' || s.peekN(1) == '*') {
			s.skipComment()
			continue
		}
		switch ch {
		case '"':
			s.skipString()
			continue
		case '\'':
			s.skipChar()
			continue
		case '(', '[', '{', '<':
			depth++
		case ')':
			if depth == 0 {
				s.advance()
				if sawAny {
					args++
				}
				return args
			}
			depth--
		case ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				args++
			}
		}
		if !isSpaceByte(ch) {
			sawAny = true
		}
		s.advance()
	}
	return args
}

// skipInitializer skips a field initializer expression. It reports
// true when it stopped at a comma separating declarators, false at
// the end of the statement. Angle brackets track separately from
// other groups because a bare comparison never nests the semicolon.
func (s *sourceScanner) skipInitializer() bool {
	group := 0
	angle := 0
	for s.pos < len(s.input) {
		ch := s.peek()
		if ch == '/' && (s.peekN(1) == '/' || s.peekN(1) == '*') {
			s.skipComment()
			continue
		}
		switch ch {
		case '"':
			s.skipString()
			continue
		case '\'':
			s.skipChar()
			continue
		case '(', '[', '{':
			group++
		case ')', ']', '}':
			if group > 0 {
				group--
			}
		case '<':
			angle++
		case '>':
			if angle > 0 {
				angle--
			}
		case ',':
			if group == 0 && angle == 0 {
				s.advance()
				return true
			}
		case ';':
			if group == 0 {
				s.advance()
				return false
			}
		}
		s.advance()
	}
	return false
}

func (s *sourceScanner) skipGroup(open, close byte) {
	depth := 0
	for s.pos < len(s.input) {
		ch := s.peek()
		if ch == '/' && (s.peekN(1) == '/' || s.peekN(1) == '*') {
			s.skipComment()
			continue
		}
		switch ch {
		case '"':
			s.skipString()
			continue
		case '\'':
			s.skipChar()
			continue
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				s.advance()
				return
			}
		}
		s.advance()
	}
}

func (s *sourceScanner) skipGenerics() {
	depth := 0
	for s.pos < len(s.input) {
		switch s.peek() {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				s.advance()
				return
			}
		case '{', ';', ')', 0:
			return
		}
		s.advance()
	}
}

func (s *sourceScanner) skipString() {
	if s.peekN(1) == '"' && s.peekN(2) == '"' {
		s.advanceN(3)
		for s.pos < len(s.input) {
			if s.peek() == '"' && s.peekN(1) == '"' && s.peekN(2) == '"' {
				s.advanceN(3)
				return
			}
			if s.peek() == '\\' {
				s.advance()
			}
			s.advance()
		}
		return
	}
	s.advance()
	for s.pos < len(s.input) {
		switch s.peek() {
		case '"':
			s.advance()
			return
		case '\\':
			s.advance()
		case '\n':
			return
		}
		s.advance()
	}
}

func (s *sourceScanner) skipChar() {
	s.advance()
	for s.pos < len(s.input) {
		switch s.peek() {
		case '\'':
			s.advance()
			return
		case '\\':
			s.advance()
		case '\n':
			return
		}
		s.advance()
	}
}

func (s *sourceScanner) peek() byte {
	if s.pos >= len(s.input) {
		return 0
	}
	return s.input[s.pos]
}

func (s *sourceScanner) peekN(n int) byte {
	if s.pos+n >= len(s.input) {
		return 0
	}
	return s.input[s.pos+n]
}

func (s *sourceScanner) advance() byte {
	if s.pos >= len(s.input) {
		return 0
	}
	ch := s.input[s.pos]
	s.pos++
	return ch
}

func (s *sourceScanner) advanceN(n int) {
	for i := 0; i < n && s.pos < len(s.input); i++ {
		s.pos++
	}
}

func isSpaceByte(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isJavaLetter(ch byte) bool {
	return ch == '_' || ch == '$' || ch >= 128 ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isJavaLetterOrDigit(ch byte) bool {
	return isJavaLetter(ch) || (ch >= '0' && ch <= '9')
}
