package pandoc

// Token is one decoded element of a pandoc AST.
type Token interface {
	Tag() Tag
	// Path is the JSON Pointer of the token in its source document.
	// Tokens built in code have an empty path.
	Path() string
}

// Container is implemented by tokens whose payload is a sequence of child tokens.
type Container interface {
	Token
	Children() []Token
}

// ListContainer is implemented by tokens whose payload is a sequence of item groups.
type ListContainer interface {
	Token
	Items() [][]Token
}

// Loc records where a token was decoded from.
type Loc struct {
	Pointer string
}

func (l Loc) Path() string { return l.Pointer }

// Attr is pandoc's (identifier, classes, key-value pairs) tuple.
type Attr struct {
	ID      string
	Classes []string
	KeyVals [][2]string
}

// Target is a (url, title) pair.
type Target struct {
	URL   string
	Title string
}

// ListAttributes is the (start, style, delimiter) tuple of an ordered list.
type ListAttributes struct {
	Start int
	Style string
	Delim string
}

// DefaultListAttributes matches what pandoc writes for "1." lists.
var DefaultListAttributes = ListAttributes{Start: 1, Style: "DefaultStyle", Delim: "DefaultDelim"}

type (
	Header struct {
		Loc
		Level   int
		Attr    Attr
		Inlines []Token
	}
	Para struct {
		Loc
		Inlines []Token
	}
	Plain struct {
		Loc
		Inlines []Token
	}
	BlockQuote struct {
		Loc
		Blocks []Token
	}
	CodeBlock struct {
		Loc
		Attr Attr
		Text string
	}
	HorizontalRule struct{ Loc }
	BulletList     struct {
		Loc
		Blocks [][]Token
	}
	OrderedList struct {
		Loc
		ListAttributes ListAttributes
		Blocks         [][]Token
	}
)

type (
	LineBreak struct{ Loc }
	SoftBreak struct{ Loc }
	Image     struct {
		Loc
		Attr   Attr
		Alt    []Token
		Target Target
	}
	Emph struct {
		Loc
		Inlines []Token
	}
	Strong struct {
		Loc
		Inlines []Token
	}
	Link struct {
		Loc
		Attr    Attr
		Inlines []Token
		Target  Target
	}
	Code struct {
		Loc
		Attr Attr
		Text string
	}
	Str struct {
		Loc
		Text string
	}
	Space struct{ Loc }
)

func (*Header) Tag() Tag         { return TagHeader }
func (*Para) Tag() Tag           { return TagPara }
func (*Plain) Tag() Tag          { return TagPlain }
func (*BlockQuote) Tag() Tag     { return TagBlockQuote }
func (*CodeBlock) Tag() Tag      { return TagCodeBlock }
func (*HorizontalRule) Tag() Tag { return TagHorizontalRule }
func (*BulletList) Tag() Tag     { return TagBulletList }
func (*OrderedList) Tag() Tag    { return TagOrderedList }
func (*LineBreak) Tag() Tag      { return TagLineBreak }
func (*SoftBreak) Tag() Tag      { return TagSoftBreak }
func (*Image) Tag() Tag          { return TagImage }
func (*Emph) Tag() Tag           { return TagEmph }
func (*Strong) Tag() Tag         { return TagStrong }
func (*Link) Tag() Tag           { return TagLink }
func (*Code) Tag() Tag           { return TagCode }
func (*Str) Tag() Tag            { return TagStr }
func (*Space) Tag() Tag          { return TagSpace }

func (t *Header) Children() []Token     { return t.Inlines }
func (t *Para) Children() []Token       { return t.Inlines }
func (t *Plain) Children() []Token      { return t.Inlines }
func (t *BlockQuote) Children() []Token { return t.Blocks }
func (t *Emph) Children() []Token       { return t.Inlines }
func (t *Strong) Children() []Token     { return t.Inlines }
func (t *Link) Children() []Token       { return t.Inlines }
func (t *Image) Children() []Token      { return t.Alt }

func (t *BulletList) Items() [][]Token  { return t.Blocks }
func (t *OrderedList) Items() [][]Token { return t.Blocks }

// Document is a decoded pandoc JSON document.
type Document struct {
	APIVersion []int
	Meta       map[string]any
	Blocks     []Token
}
