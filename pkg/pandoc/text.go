package pandoc

import "strings"

// PlainText flattens inline tokens to their literal text, discarding every
// formatting construct. Breaks and spaces become a single space.
func PlainText(tokens []Token) string {
	var b strings.Builder
	writePlain(&b, tokens)
	return b.String()
}

func writePlain(b *strings.Builder, tokens []Token) {
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *Str:
			b.WriteString(t.Text)
		case *Space, *SoftBreak, *LineBreak:
			b.WriteByte(' ')
		case *Code:
			b.WriteString(t.Text)
		case Container:
			writePlain(b, t.Children())
		}
	}
}
