package lexer

import "fmt"

// Kind identifies the structural role of a token.
type Kind int

const (
	KindMetadata Kind = iota + 1
	KindHeading
	KindKeyword
	KindParameter
	KindAttribute
	KindValue
	KindCode
	KindTableRow
	KindParagraph
)

func (k Kind) String() string {
	switch k {
	case KindMetadata:
		return "metadata"
	case KindHeading:
		return "heading"
	case KindKeyword:
		return "keyword"
	case KindParameter:
		return "parameter"
	case KindAttribute:
		return "attribute"
	case KindValue:
		return "value"
	case KindCode:
		return "code"
	case KindTableRow:
		return "table_row"
	case KindParagraph:
		return "paragraph"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Structural keywords recognised at the start of a list item.
const (
	KeywordParameters = "Parameters"
	KeywordAttributes = "Attributes"
	KeywordRequest    = "Request"
	KeywordResponse   = "Response"
	KeywordBody       = "Body"
	KeywordHeaders    = "Headers"
	KeywordSchema     = "Schema"
	KeywordMembers    = "Members"
	KeywordValues     = "Values"
	KeywordDefault    = "Default"
	KeywordInclude    = "Include"
)

var keywords = []string{
	KeywordParameters,
	KeywordAttributes,
	KeywordRequest,
	KeywordResponse,
	KeywordBody,
	KeywordHeaders,
	KeywordSchema,
	KeywordMembers,
	KeywordValues,
	KeywordDefault,
	KeywordInclude,
}

// Token is one structural element of a document.
type Token struct {
	Kind Kind
	// Line is the 1-based line the token starts on.
	Line int
	// Indent is the column of the first non-space character (tabs count as four).
	Indent int
	// Depth is the number of block contexts open when the token was emitted.
	Depth int
	// Opens reports whether the token opened a new block context.
	// Tokens emitted afterwards with Depth greater than this token's Depth belong to it.
	Opens bool
	// BlankBefore reports whether one or more blank lines preceded the token.
	BlankBefore bool

	// Level is the heading level (1-6).
	Level int
	// Text holds heading text, paragraph text or a member declaration.
	Text string

	Key   string
	Value string

	Keyword  string
	Argument string

	// Content is the dedented body of a code block.
	Content string
	// Fenced marks code blocks delimited by ``` in prose.
	Fenced bool

	Cells []string

	// Raw is the source text the token was produced from.
	Raw string
}

func (t Token) String() string {
	switch t.Kind {
	case KindHeading:
		return fmt.Sprintf("%d:%s(%d %q)", t.Line, t.Kind, t.Level, t.Text)
	case KindMetadata:
		return fmt.Sprintf("%d:%s(%s=%q)", t.Line, t.Kind, t.Key, t.Value)
	case KindKeyword:
		return fmt.Sprintf("%d:%s(%s %q)", t.Line, t.Kind, t.Keyword, t.Argument)
	case KindCode:
		return fmt.Sprintf("%d:%s(%q)", t.Line, t.Kind, t.Content)
	default:
		return fmt.Sprintf("%d:%s(%q)", t.Line, t.Kind, t.Text)
	}
}
