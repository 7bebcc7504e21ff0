package babel

import (
	"strings"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

// Placeholders recognized in command templates.
const (
	PlaceholderTool   = "%babel"
	PlaceholderType   = "%type"
	PlaceholderInput  = "%in"
	PlaceholderOutput = "%out"
)

// TokenKind classifies one token of a command template.
type TokenKind int

const (
	Literal TokenKind = iota
	ToolPath
	FeatureTypeArg
	InputPath
	OutputPath
)

// String returns the kind name.
func (k TokenKind) String() string {
	switch k {
	case ToolPath:
		return "tool"
	case FeatureTypeArg:
		return "type"
	case InputPath:
		return "input"
	case OutputPath:
		return "output"
	default:
		return "literal"
	}
}

// Token is one whitespace-separated word of a template.
type Token struct {
	Kind TokenKind
	Text string // as authored
}

// Template is a parsed command such as
//
//	%babel -w -i garmin -f %in -o gpx -F %out
//
// The zero Template is empty and expands to nil.
type Template struct {
	tokens []Token
}

// ParseTemplate splits s on runs of whitespace and classifies each word.
// Only whole words are placeholders; "%in.gpx" is a literal.
func ParseTemplate(s string) Template {
	words := strings.Fields(s)
	if len(words) == 0 {
		return Template{}
	}
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{Kind: kindOf(w), Text: w}
	}
	return Template{tokens: tokens}
}

func kindOf(word string) TokenKind {
	switch word {
	case PlaceholderTool:
		return ToolPath
	case PlaceholderType:
		return FeatureTypeArg
	case PlaceholderInput:
		return InputPath
	case PlaceholderOutput:
		return OutputPath
	}
	return Literal
}

// IsEmpty reports whether the template has no tokens.
func (t Template) IsEmpty() bool { return len(t.tokens) == 0 }

// Tokens returns a copy of the parsed tokens.
func (t Template) Tokens() []Token {
	out := make([]Token, len(t.tokens))
	copy(out, t.tokens)
	return out
}

// Expand substitutes the placeholders and returns the argv. The tool is
// substituted verbatim; paths are quoted when they contain whitespace. An
// empty template yields nil.
func (t Template) Expand(tool string, ft gpx.FeatureType, in, out string) []string {
	if t.IsEmpty() {
		return nil
	}
	argv := make([]string, len(t.tokens))
	for i, tok := range t.tokens {
		switch tok.Kind {
		case ToolPath:
			argv[i] = tool
		case FeatureTypeArg:
			argv[i] = TypeArgument(ft)
		case InputPath:
			argv[i] = quote(in)
		case OutputPath:
			argv[i] = quote(out)
		default:
			argv[i] = tok.Text
		}
	}
	return argv
}

// String renders the template in its authored form, words joined by single
// spaces.
func (t Template) String() string {
	words := make([]string, len(t.tokens))
	for i, tok := range t.tokens {
		words[i] = tok.Text
	}
	return strings.Join(words, " ")
}
