package javadoc

import (
	"strconv"
	"strings"
)

// Render flattens a parsed comment into the plain text of a
// docstring. Inline markup dissolves into its text, the structural
// HTML elements become line breaks and bullets, and block tags come
// out as "@tag ..." lines after the body.
func Render(doc *DocComment) string {
	if doc == nil {
		return ""
	}
	body := strings.TrimSpace(normalizeBlankLines(renderNodes(doc.Body)))
	// List items sit tight under the line that introduces them.
	body = strings.ReplaceAll(body, "\n\n- ", "\n- ")

	var tags []string
	for _, tag := range doc.BlockTags {
		if line := renderBlockTag(tag); line != "" {
			tags = append(tags, line)
		}
	}
	switch {
	case len(tags) == 0:
		return body
	case body == "":
		return strings.Join(tags, "\n")
	default:
		return body + "\n\n" + strings.Join(tags, "\n")
	}
}

func renderNodes(nodes []Node) string {
	var sb strings.Builder
	for _, node := range nodes {
		sb.WriteString(renderNode(node))
	}
	return sb.String()
}

func renderNode(node Node) string {
	switch n := node.(type) {
	case Text:
		return n.Content
	case Code:
		return codeText(n.Content)
	case Literal:
		return codeText(n.Content)
	case Link:
		if len(n.Label) > 0 {
			return renderNodes(n.Label)
		}
		return simpleReference(n.Reference)
	case Return:
		if n.Inline {
			return "Returns " + strings.TrimSpace(renderNodes(n.Description))
		}
		return ""
	case InlineTag:
		return n.Content
	case StartElement:
		return elementText(n)
	case EndElement:
		return endElementText(n)
	case Entity:
		return decodeEntity(n.Name)
	default:
		return ""
	}
}

// codeText prepares {@code} and {@literal} content: the comment line
// prefixes go, and multi-line snippets keep their line structure by
// standing on their own lines.
func codeText(content string) string {
	content = strings.TrimSpace(stripCommentPrefix(content))
	if strings.Contains(content, "\n") {
		return "\n" + content + "\n"
	}
	return content
}

// stripCommentPrefix removes the leading asterisk of comment
// continuation lines from raw tag content, which is read before the
// parser's own prefix stripping can see it.
func stripCommentPrefix(s string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		trimmed := strings.TrimLeft(lines[i], " \t")
		switch {
		case strings.HasPrefix(trimmed, "* "):
			lines[i] = trimmed[2:]
		case trimmed == "*":
			lines[i] = ""
		case strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "*/"):
			lines[i] = trimmed[1:]
		default:
			lines[i] = trimmed
		}
	}
	return strings.Join(lines, "\n")
}

// simpleReference shortens "java.util.List#add(E)" to the member or
// class name a reader would say out loud.
func simpleReference(ref string) string {
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		member := ref[i+1:]
		if paren := strings.Index(member, "("); paren >= 0 {
			member = member[:paren]
		}
		if member != "" {
			return member
		}
		ref = ref[:i]
	}
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func elementText(e StartElement) string {
	switch strings.ToLower(e.Name) {
	case "p":
		return "\n\n"
	case "br":
		return "\n"
	case "li":
		return "\n- "
	case "ul", "ol", "dl", "table", "tr":
		return "\n"
	case "dd":
		return "\n  "
	case "td", "th":
		return " "
	case "pre", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6":
		return "\n\n"
	default:
		return ""
	}
}

func endElementText(e EndElement) string {
	switch strings.ToLower(e.Name) {
	case "pre":
		return "\n\n"
	case "ul", "ol", "dl", "table":
		return "\n"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "\n"
	default:
		return ""
	}
}

func renderBlockTag(node Node) string {
	switch n := node.(type) {
	case Param:
		name := n.Name
		if n.IsTypeParam {
			name = "<" + name + ">"
		}
		return tagLine("@param "+name, n.Description)
	case Return:
		return tagLine("@return", n.Description)
	case Throws:
		return tagLine("@throws "+n.Exception, n.Description)
	case See:
		return tagLine("@see", n.Reference)
	case Since:
		return tagLine("@since", n.Version)
	case Deprecated:
		return tagLine("@deprecated", n.Description)
	case BlockTag:
		return tagLine("@"+n.Name, n.Content)
	default:
		return ""
	}
}

// tagLine renders one block tag on a single line; continuation lines
// of its description collapse into spaces.
func tagLine(head string, desc []Node) string {
	text := strings.Join(strings.Fields(renderNodes(desc)), " ")
	if text == "" {
		return head
	}
	return head + " " + text
}

var namedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"quot": `"`,
	"apos": "'",
	"nbsp": " ",
}

func decodeEntity(name string) string {
	if s, ok := namedEntities[name]; ok {
		return s
	}
	if strings.HasPrefix(name, "#") {
		digits := name[1:]
		base := 10
		if len(digits) > 1 && (digits[0] == 'x' || digits[0] == 'X') {
			digits = digits[1:]
			base = 16
		}
		if n, err := strconv.ParseInt(digits, base, 32); err == nil && n > 0 {
			return string(rune(n))
		}
	}
	return "&" + name + ";"
}

// normalizeBlankLines collapses runs of blank lines to one and drops
// trailing whitespace per line; everything else stays verbatim so
// preformatted blocks keep their indentation.
func normalizeBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, strings.TrimRight(line, " \t"))
		blank = false
	}
	return strings.Join(out, "\n")
}
