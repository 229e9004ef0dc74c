package pandoc

// Tag identifies a pandoc AST constructor. The set is closed: tags outside of
// it are reported as unknown during decoding.
type Tag uint8

const (
	TagInvalid Tag = iota

	// Blocks
	TagHeader
	TagPara
	TagPlain
	TagBlockQuote
	TagCodeBlock
	TagHorizontalRule
	TagBulletList
	TagOrderedList

	// Inlines
	TagLineBreak
	TagSoftBreak
	TagImage
	TagEmph
	TagStrong
	TagLink
	TagCode
	TagStr
	TagSpace

	tagCount
)

var tagNames = [tagCount]string{
	TagInvalid:        "",
	TagHeader:         "Header",
	TagPara:           "Para",
	TagPlain:          "Plain",
	TagBlockQuote:     "BlockQuote",
	TagCodeBlock:      "CodeBlock",
	TagHorizontalRule: "HorizontalRule",
	TagBulletList:     "BulletList",
	TagOrderedList:    "OrderedList",
	TagLineBreak:      "LineBreak",
	TagSoftBreak:      "SoftBreak",
	TagImage:          "Image",
	TagEmph:           "Emph",
	TagStrong:         "Strong",
	TagLink:           "Link",
	TagCode:           "Code",
	TagStr:            "Str",
	TagSpace:          "Space",
}

var tagByName = func() map[string]Tag {
	m := make(map[string]Tag, tagCount)
	for t := TagInvalid + 1; t < tagCount; t++ {
		m[tagNames[t]] = t
	}
	return m
}()

// ParseTag returns the Tag with the given wire name.
func ParseTag(name string) (Tag, bool) {
	t, ok := tagByName[name]
	return t, ok
}

// Tags returns every supported tag.
func Tags() []Tag {
	out := make([]Tag, 0, tagCount-1)
	for t := TagInvalid + 1; t < tagCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t Tag) String() string {
	if t < tagCount {
		return tagNames[t]
	}
	return "Tag(?)"
}

// IsBlock reports whether the tag appears in block position.
func (t Tag) IsBlock() bool { return t >= TagHeader && t <= TagOrderedList }

// IsInline reports whether the tag appears in inline position.
func (t Tag) IsInline() bool { return t >= TagLineBreak && t < tagCount }
