package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Tokens.
const (
	CommentChars  = ";#"
	LabelChar     = ':'
	SeparatorChar = ','
	DirectiveChar = '.'
	HexChar       = '$'
	BinaryChar    = '%'
	LabelChars    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_0123456789"
	IndirectI     = "[I]"
)

type stateFn func(*lexer) stateFn

const eof = -1

type itemType int

const (
	itemError itemType = iota // Error occurred; value is text of error.
	itemNewline
	itemIdentifier
	itemNumber
	itemComment
	itemLabel
	itemComa
	itemDirective
	itemEOF // End of the input.
)

func (it itemType) String() string {
	switch it {
	case itemError:
		return "<error>"
	case itemNewline:
		return "<newline>"
	case itemIdentifier:
		return "<identifier>"
	case itemNumber:
		return "<number>"
	case itemComment:
		return "<comment>"
	case itemLabel:
		return "<label>"
	case itemComa:
		return "<coma>"
	case itemDirective:
		return "<directive>"
	case itemEOF:
		return "<eof>"
	default:
		return fmt.Sprintf("<unknown token %d>", it)
	}
}

func (it itemType) isEOL() bool {
	// Comments run to the end of the line.
	return it == itemNewline || it == itemEOF || it == itemComment
}

type item struct {
	typ  itemType // The type of this item.
	pos  Pos      // The start position, in bytes, of this item in the input string.
	val  string   // The value of this item.
	line int      // The line number at the start of this item.
}

func (i item) String() string {
	switch {
	case i.typ == itemEOF:
		return "EOF"
	case i.typ == itemError:
		return i.val
	case i.typ == itemNewline:
		return "'\\n'"
	case len(i.val) > 10:
		return fmt.Sprintf("%s %.10q...", i.typ, i.val)
	}
	return fmt.Sprintf("%s %q", i.typ, i.val)
}

type Pos int

// lexer holds the state of the scanner.
type lexer struct {
	name      string // The name of the input; used only for error reports.
	input     string // The string being scanned.
	pos       Pos    // Current position in the input.
	start     Pos    // Start position of this item.
	atEOF     bool   // We have hit the end of input and returned eof.
	line      int    // 1+number of newlines seen.
	startLine int    // Start line of this item.
	item      item   // Item to return to parser.
}

// errorf returns an error token and terminates the scan by passing
// back a nil pointer that will be the next state, terminating l.nextItem.
func (l *lexer) errorf(format string, args ...any) stateFn {
	l.item = item{itemError, l.start, fmt.Sprintf(format, args...), l.startLine}
	l.start = 0
	l.pos = 0
	l.input = l.input[:0]
	return nil
}

// next returns the next rune in the input.
func (l *lexer) next() rune {
	if int(l.pos) >= len(l.input) {
		l.atEOF = true
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += Pos(w)
	if r == '\n' {
		l.line++
	}
	return r
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup steps back one rune.
func (l *lexer) backup() {
	if !l.atEOF && l.pos > 0 {
		r, w := utf8.DecodeLastRuneInString(l.input[:l.pos])
		l.pos -= Pos(w)
		// Correct newline count.
		if r == '\n' {
			l.line--
		}
	}
}

// thisItem returns the item at the current input point with the specified type
// and advances the input.
func (l *lexer) thisItem(t itemType) item {
	i := item{t, l.start, l.input[l.start:l.pos], l.startLine}
	l.start = l.pos
	l.startLine = l.line
	return i
}

// emit passes the trailing text as an item back to the parser.
func (l *lexer) emit(t itemType) stateFn {
	return l.emitItem(l.thisItem(t))
}

// emitItem passes the specified item to the parser.
func (l *lexer) emitItem(i item) stateFn {
	l.item = i
	return nil
}

// ignore skips over the pending input before this point.
// It tracks newlines in the ignored text, so use it only
// for text that is skipped without calling l.next.
func (l *lexer) ignore() {
	l.line += strings.Count(l.input[l.start:l.pos], "\n")
	l.start = l.pos
	l.startLine = l.line
}

// accept consumes the next rune if it's from the valid set.
func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

// acceptRun consumes a run of runes from the valid set.
func (l *lexer) acceptRun(valid string) bool {
	accepted := false
	for strings.ContainsRune(valid, l.next()) {
		accepted = true
	}
	l.backup()
	return accepted
}

func lexText(l *lexer) stateFn {
	l.acceptRun(" \t\r") // Consume leading whitespace.
	if l.atEOF {
		return l.emit(itemEOF)
	}
	l.ignore() // ignore leading whitespace.
	switch r := l.peek(); {
	case r == '\n':
		l.acceptRun(" \t\r\n")
		// Newlines were counted by next.
		l.start = l.pos
		l.startLine = l.line
		if l.atEOF {
			return l.emit(itemEOF)
		}
		return l.emit(itemNewline)
	case r == DirectiveChar:
		return lexDirective
	case r == SeparatorChar:
		l.pos++
		return l.emit(itemComa)
	case r == '[':
		return lexIndirect
	case r == HexChar || r == BinaryChar || ('0' <= r && r <= '9'):
		return lexNumber
	case strings.ContainsRune(CommentChars, r):
		return lexComment
	case strings.ContainsRune(LabelChars, r):
		return lexIdentifier
	default:
		return l.errorf("unexpected character %c", r)
	}
}

// lexIndirect scans the only bracketed operand, "[I]".
func lexIndirect(l *lexer) stateFn {
	if len(l.input[l.pos:]) < len(IndirectI) || !strings.EqualFold(l.input[l.pos:l.pos+Pos(len(IndirectI))], IndirectI) {
		return l.errorf("expected %s", IndirectI)
	}
	l.pos += Pos(len(IndirectI))
	return l.emit(itemIdentifier)
}

func lexNumber(l *lexer) stateFn {
	// Deciment digits charset.
	digits := "0123456789_"

	// Does it have a specific base?
	// If so, change the charset.
	switch {
	case l.accept(string(HexChar)):
		digits = "0123456789abcdefABCDEF_"
	case l.accept(string(BinaryChar)):
		digits = "01_"
	case l.accept("0"):
		if l.accept("xX") {
			digits = "0123456789abcdefABCDEF_"
		} else if l.accept("bB") {
			digits = "01_"
		}
	}

	// Consume the charset.
	l.acceptRun(digits)

	// If the next rune is in the label set, it is not a number.
	if strings.ContainsRune(LabelChars, l.peek()) {
		return l.errorf("bad number syntax: %q", l.input[l.start:l.pos+1])
	}
	return l.emit(itemNumber)
}

func lexIdentifier(l *lexer) stateFn {
	l.acceptRun(LabelChars)
	// If the identifier is directly followed by a label char,
	// it is a label definition.
	if l.peek() == LabelChar {
		l.emit(itemLabel)
		l.pos++
		l.ignore()
		return nil
	}
	return l.emit(itemIdentifier)
}

func lexComment(l *lexer) stateFn {
	for {
		r := l.next()
		if r == eof || r == '\n' {
			break
		}
	}
	i := l.thisItem(itemComment)
	i.val = strings.TrimSpace(i.val)
	return l.emitItem(i)
}

func lexDirective(l *lexer) stateFn {
	l.pos++
	if !l.acceptRun(LabelChars) {
		return l.errorf("missing directive name")
	}
	return l.emit(itemDirective)
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	l.item = item{itemEOF, l.pos, "EOF", l.startLine}
	state := lexText
	for {
		state = state(l)
		if state == nil {
			return l.item
		}
	}
}

// NewLexer creates a new scanner for the input string.
func NewLexer(name, input string) *lexer {
	return &lexer{
		name:      name,
		input:     input,
		line:      1,
		startLine: 1,
	}
}
