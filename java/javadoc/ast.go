// Package javadoc extracts documentation comments from Java sources
// and renders them as plain text suitable for stub docstrings.
package javadoc

// Node is the interface implemented by all comment AST nodes.
type Node interface {
	node()
}

// DocComment is one parsed documentation comment.
type DocComment struct {
	Body      []Node // main description
	BlockTags []Node // @param, @return, and the other trailing tags
}

func (DocComment) node() {}

// Text is plain text content.
type Text struct {
	Content string
}

func (Text) node() {}

// Code is an {@code ...} inline tag.
type Code struct {
	Content string
}

func (Code) node() {}

// Literal is an {@literal ...} inline tag.
type Literal struct {
	Content string
}

func (Literal) node() {}

// Link is an {@link ...} or {@linkplain ...} inline tag.
type Link struct {
	Reference string // e.g. "java.util.List#add"
	Label     []Node // optional label content
	Plain     bool   // true for @linkplain
}

func (Link) node() {}

// InlineTag is an inline tag with no dedicated node type; its raw
// content renders as text.
type InlineTag struct {
	Name    string
	Content string
}

func (InlineTag) node() {}

// Param is a @param block tag.
type Param struct {
	Name        string
	IsTypeParam bool // true for @param <T>
	Description []Node
}

func (Param) node() {}

// Return is a @return block tag or {@return ...} inline tag.
type Return struct {
	Description []Node
	Inline      bool
}

func (Return) node() {}

// Throws is a @throws or @exception block tag.
type Throws struct {
	Exception   string
	Description []Node
}

func (Throws) node() {}

// See is a @see block tag.
type See struct {
	Reference []Node
}

func (See) node() {}

// Since is a @since block tag.
type Since struct {
	Version []Node
}

func (Since) node() {}

// Deprecated is a @deprecated block tag.
type Deprecated struct {
	Description []Node
}

func (Deprecated) node() {}

// BlockTag is a block tag with no dedicated node type.
type BlockTag struct {
	Name    string
	Content []Node
}

func (BlockTag) node() {}

// StartElement is the start of an HTML element.
type StartElement struct {
	Name       string
	Attributes []Attribute
	SelfClose  bool
}

func (StartElement) node() {}

// EndElement is the end of an HTML element.
type EndElement struct {
	Name string
}

func (EndElement) node() {}

// Attribute is one HTML attribute.
type Attribute struct {
	Name  string
	Value string
}

// Entity is an HTML entity like &nbsp; or &#160;.
type Entity struct {
	Name string // without the & and ;
}

func (Entity) node() {}
