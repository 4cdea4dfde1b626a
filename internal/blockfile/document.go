package blockfile

import (
	"bytes"
	"strings"
)

// Node is one element of a parsed Document.
type Node interface {
	lines(dst []string) []string
}

// Raw is a line kept verbatim: blank lines, comments and anything the
// parser does not recognize.
type Raw struct {
	Text string
}

func (r *Raw) lines(dst []string) []string {
	return append(dst, r.Text)
}

// Directive is a "key value" line. Concatenating the fields reproduces the
// original line; updates replace Value only.
type Directive struct {
	Indent string
	Key    string
	Sep    string
	Value  string
	// Suffix holds an optional ';', an inline comment, trailing space and '\r'.
	Suffix string
}

// String returns the directive as it appears in the file.
func (d *Directive) String() string {
	return d.Indent + d.Key + d.Sep + d.Value + d.Suffix
}

func (d *Directive) lines(dst []string) []string {
	return append(dst, d.String())
}

// Block is a "marker {" ... "}" region.
type Block struct {
	Header string
	Marker string
	Body   []Node
	Footer string
	// Closed is false for a block still open at end of file.
	Closed bool
}

func (b *Block) lines(dst []string) []string {
	dst = append(dst, b.Header)
	for _, n := range b.Body {
		dst = n.lines(dst)
	}
	if b.Closed {
		dst = append(dst, b.Footer)
	}
	return dst
}

// Document is a parsed config file.
type Document struct {
	Nodes           []Node
	trailingNewline bool
}

// Parse builds a Document from file content. It never fails: lines it
// cannot classify become Raw nodes.
func Parse(data []byte) *Document {
	doc := &Document{}
	if len(data) == 0 {
		return doc
	}

	text := string(data)
	if strings.HasSuffix(text, "\n") {
		doc.trailingNewline = true
		text = strings.TrimSuffix(text, "\n")
	}

	var stack []*Block
	appendNode := func(n Node) {
		if len(stack) == 0 {
			doc.Nodes = append(doc.Nodes, n)
			return
		}
		top := stack[len(stack)-1]
		top.Body = append(top.Body, n)
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			appendNode(&Raw{Text: line})

		case strings.HasPrefix(trimmed, "}") && len(stack) > 0:
			top := stack[len(stack)-1]
			top.Footer = line
			top.Closed = true
			stack = stack[:len(stack)-1]

		case strings.HasSuffix(stripComment(trimmed), "{"):
			b := &Block{Header: line, Marker: blockMarker(stripComment(trimmed))}
			appendNode(b)
			stack = append(stack, b)

		default:
			if d, ok := parseDirective(line); ok {
				appendNode(d)
			} else {
				appendNode(&Raw{Text: line})
			}
		}
	}

	return doc
}

// blockMarker returns the first word of a block header.
func blockMarker(trimmed string) string {
	fields := strings.Fields(strings.TrimSuffix(trimmed, "{"))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseDirective splits a line into directive fields.
func parseDirective(line string) (*Directive, bool) {
	rest := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(rest)]

	keyEnd := strings.IndexAny(rest, " \t")
	if keyEnd <= 0 {
		return nil, false
	}
	key := rest[:keyEnd]
	if !validKey(key) {
		return nil, false
	}
	rest = rest[keyEnd:]

	valueStart := len(rest) - len(strings.TrimLeft(rest, " \t"))
	sep := rest[:valueStart]
	rest = rest[valueStart:]

	// Inline comment, then trailing ';', whitespace and '\r' belong to the suffix.
	body := rest
	if i := commentStart(body); i >= 0 {
		body = body[:i]
	}
	body = strings.TrimRight(body, " \t\r")
	body = strings.TrimSuffix(body, ";")
	body = strings.TrimRight(body, " \t")

	if body == "" || strings.ContainsAny(body, "{}") {
		return nil, false
	}

	return &Directive{
		Indent: indent,
		Key:    key,
		Sep:    sep,
		Value:  body,
		Suffix: rest[len(body):],
	}, true
}

// stripComment drops an inline comment and the space before it.
func stripComment(s string) string {
	if i := commentStart(s); i >= 0 {
		return strings.TrimRight(s[:i], " \t")
	}
	return s
}

// commentStart finds a '#' that follows whitespace.
func commentStart(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] == '#' && (s[i-1] == ' ' || s[i-1] == '\t') {
			return i - 1
		}
	}
	return -1
}

// validKey matches [A-Za-z_][A-Za-z0-9_.-]*.
func validKey(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
		if i == 0 {
			if !letter {
				return false
			}
			continue
		}
		if !(letter || c >= '0' && c <= '9' || c == '.' || c == '-') {
			return false
		}
	}
	return true
}

// Bytes serializes the document.
func (doc *Document) Bytes() []byte {
	var lines []string
	for _, n := range doc.Nodes {
		lines = n.lines(lines)
	}
	if len(lines) == 0 {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(lines, "\n"))
	if doc.trailingNewline {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// walk visits every node in file order, descending into blocks.
// Returning false from fn stops the walk.
func walk(nodes []Node, fn func(Node) bool) bool {
	for _, n := range nodes {
		if !fn(n) {
			return false
		}
		if b, ok := n.(*Block); ok {
			if !walk(b.Body, fn) {
				return false
			}
		}
	}
	return true
}

// Read returns the value of the first directive named key anywhere in the
// document, regardless of block.
func (doc *Document) Read(key string) (string, bool) {
	var (
		value string
		found bool
	)
	walk(doc.Nodes, func(n Node) bool {
		if d, ok := n.(*Directive); ok && d.Key == key {
			value, found = d.Value, true
			return false
		}
		return true
	})
	return value, found
}

// Block returns the first block whose header starts with marker.
func (doc *Document) Block(marker string) *Block {
	var found *Block
	walk(doc.Nodes, func(n Node) bool {
		if b, ok := n.(*Block); ok && b.Marker == marker {
			found = b
			return false
		}
		return true
	})
	return found
}

// Directives returns every directive in file order.
func (doc *Document) Directives() []*Directive {
	var out []*Directive
	walk(doc.Nodes, func(n Node) bool {
		if d, ok := n.(*Directive); ok {
			out = append(out, d)
		}
		return true
	})
	return out
}

// Directives returns the directives directly inside the block.
func (b *Block) Directives() []*Directive {
	var out []*Directive
	for _, n := range b.Body {
		if d, ok := n.(*Directive); ok {
			out = append(out, d)
		}
	}
	return out
}

// Action describes what Upsert did.
type Action string

const (
	ActionCreatedBlock Action = "created-block"
	ActionInserted     Action = "inserted"
	ActionUpdated      Action = "updated"
	ActionUnchanged    Action = "unchanged"
)

// Change reports the effect of one Upsert.
type Change struct {
	Action Action
	Key    string
	Old    string
	New    string
}

// Upsert sets key to value inside the block named marker. A missing block
// is appended at the end of the document; an existing directive has only
// its value replaced; otherwise a new directive goes right before the
// block's closing brace.
func (doc *Document) Upsert(marker, key, value string) (Change, error) {
	if err := ValidateDirective(marker, key, value); err != nil {
		return Change{}, err
	}

	change := Change{Key: key, New: value}

	b := doc.Block(marker)
	if b == nil {
		doc.Nodes = append(doc.Nodes, &Block{
			Header: marker + " {",
			Marker: marker,
			Body:   []Node{&Directive{Indent: defaultIndent, Key: key, Sep: " ", Value: value}},
			Footer: "}",
			Closed: true,
		})
		doc.trailingNewline = true
		change.Action = ActionCreatedBlock
		return change, nil
	}

	siblings := b.Directives()
	for _, d := range siblings {
		if d.Key != key {
			continue
		}
		change.Old = d.Value
		if d.Value == value {
			change.Action = ActionUnchanged
			return change, nil
		}
		d.Value = value
		change.Action = ActionUpdated
		return change, nil
	}

	b.Body = append(b.Body, newDirectiveLike(b, siblings, key, value))
	change.Action = ActionInserted
	return change, nil
}

const defaultIndent = "    "

// newDirectiveLike builds a directive matching the style of the block's
// last directive, or indented one level under the header.
func newDirectiveLike(b *Block, siblings []*Directive, key, value string) *Directive {
	d := &Directive{Key: key, Sep: " ", Value: value}
	if len(siblings) == 0 {
		header := strings.TrimLeft(b.Header, " \t")
		d.Indent = b.Header[:len(b.Header)-len(header)] + defaultIndent
		return d
	}

	last := siblings[len(siblings)-1]
	d.Indent = last.Indent
	if strings.HasPrefix(last.Sep, "\t") {
		d.Sep = "\t"
	}
	if strings.HasPrefix(strings.TrimLeft(last.Suffix, " \t"), ";") {
		d.Suffix = ";"
	}
	if strings.HasSuffix(last.Suffix, "\r") {
		d.Suffix += "\r"
	}
	return d
}

// Remove deletes every directive named key anywhere in the document and
// returns how many were removed.
func (doc *Document) Remove(key string) int {
	var removed int
	doc.Nodes = removeFrom(doc.Nodes, key, &removed)
	return removed
}

func removeFrom(nodes []Node, key string, removed *int) []Node {
	kept := nodes[:0]
	for _, n := range nodes {
		switch v := n.(type) {
		case *Directive:
			if v.Key == key {
				*removed++
				continue
			}
		case *Block:
			v.Body = removeFrom(v.Body, key, removed)
		}
		kept = append(kept, n)
	}
	return kept
}
