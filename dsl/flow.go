package dsl

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// FlowBlock is the body of a page or a paragraph.
type FlowBlock struct {
	Items []*FlowItem `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// FlowItem is one entry of a page or paragraph body. Exactly one field is set.
type FlowItem struct {
	Par       *Par         `parser:"  @@"`
	Text      *Text        `parser:"| @@"`
	Glue      *Glue        `parser:"| @@"`
	Rect      *Rect        `parser:"| @@"`
	Image     *Image       `parser:"| @@"`
	PageBreak *PageBreak   `parser:"| @@"`
	Literal   *TextLiteral `parser:"| @@"`
}

// Kind returns the keyword of the item, "literal" for a bare string.
func (f *FlowItem) Kind() string {
	switch {
	case f == nil:
		return "unknown"
	case f.Par != nil:
		return "par"
	case f.Text != nil:
		return "text"
	case f.Glue != nil:
		return "glue"
	case f.Rect != nil:
		return "rect"
	case f.Image != nil:
		return "image"
	case f.PageBreak != nil:
		return "pagebreak"
	case f.Literal != nil:
		return "literal"
	default:
		return "unknown"
	}
}

// Pos returns where the item starts.
func (f *FlowItem) Pos() lexer.Position {
	switch {
	case f == nil:
		return lexer.Position{}
	case f.Par != nil:
		return f.Par.Pos
	case f.Text != nil:
		return f.Text.Pos
	case f.Glue != nil:
		return f.Glue.Pos
	case f.Rect != nil:
		return f.Rect.Pos
	case f.Image != nil:
		return f.Image.Pos
	case f.PageBreak != nil:
		return f.PageBreak.Pos
	case f.Literal != nil:
		return f.Literal.Pos
	default:
		return lexer.Position{}
	}
}

// Par is a paragraph: `par [key value]... { items }`. Paragraphs nest.
type Par struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Args []*Lexeme      `parser:"'par' @@*"`
	Body *FlowBlock     `parser:"Newline* @@"`
}

// Text is a styled run of words: `text [Style] [key value]... { "..." }`.
type Text struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Args  []*Lexeme      `parser:"'text' @@*"`
	Lines []*TextLiteral `parser:"Newline* '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Content joins the string literals of the run with single spaces.
func (t *Text) Content() string {
	parts := make([]string, 0, len(t.Lines))
	for _, l := range t.Lines {
		parts = append(parts, string(l.Value))
	}
	return strings.Join(parts, " ")
}

// Glue marks a break opportunity. Arguments are accepted and ignored.
type Glue struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Args []*Lexeme      `parser:"'glue' @@*"`
}

// Rect is an inline rectangle: `rect width W height H [fill C] [stroke C]`.
type Rect struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Args []*Lexeme      `parser:"'rect' @@*"`
}

// Image is an inline image: `image [Resource] [src "..."] [width W] [height H]`.
type Image struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Args []*Lexeme      `parser:"'image' @@*"`
}

// PageBreak starts a new page. Only valid directly inside a page.
type PageBreak struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Args []*Lexeme      `parser:"'pagebreak' @@*"`
}
