// Package parser turns CHIP-8 assembly source into nodes and encodes them.
package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is an element of the program: label, instruction or data directive.
type Node interface {
	fmt.Stringer
	Encode(p *Program) error
}

// OperandType enum type.
type OperandType int

// OperandType values.
const (
	_          OperandType = iota
	OpRegister             // V0 <--> VF.
	OpNumber               // Immediate, address or nibble.
	OpLabelRef             // Resolved to an address when encoding.
	OpKeyword              // I, DT, ST, K, F, B or [I].
)

var keywords = []string{"I", "DT", "ST", "K", "F", "B", IndirectI}

// Operand of an instruction or directive.
type Operand struct {
	Typ   OperandType
	Raw   string
	Value int // Register index or number. Set for labels once resolved.
}

func (o Operand) String() string { return o.Raw }

func parseNumber(s string) (int, error) {
	s = strings.ReplaceAll(s, "_", "")
	base := 10
	switch {
	case strings.HasPrefix(s, string(HexChar)):
		s, base = s[1:], 16
	case strings.HasPrefix(s, string(BinaryChar)):
		s, base = s[1:], 2
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		s, base = s[2:], 2
	}
	n, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func newOperand(it item) (Operand, error) {
	if it.typ == itemNumber {
		n, err := parseNumber(it.val)
		if err != nil {
			return Operand{}, fmt.Errorf("invalid number %q: %w", it.val, err)
		}
		return Operand{Typ: OpNumber, Raw: it.val, Value: n}, nil
	}

	upper := strings.ToUpper(it.val)
	if len(upper) == 2 && upper[0] == 'V' {
		if n, err := strconv.ParseUint(upper[1:], 16, 4); err == nil {
			return Operand{Typ: OpRegister, Raw: upper, Value: int(n)}, nil
		}
	}
	for _, kw := range keywords {
		if upper == kw {
			return Operand{Typ: OpKeyword, Raw: kw}, nil
		}
	}
	if c := it.val[0]; '0' <= c && c <= '9' {
		return Operand{}, fmt.Errorf("invalid label reference %q", it.val)
	}
	return Operand{Typ: OpLabelRef, Raw: it.val}, nil
}

// Parser structure.
type Parser struct {
	lexer     *lexer
	currToken item
	peekToken item

	Nodes []Node
}

// NewParser creates a new parser.
func NewParser(name, input string) *Parser {
	p := &Parser{
		lexer: NewLexer(name, input),
	}
	// Preload the next token.
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.currToken = p.peekToken
	p.peekToken = p.lexer.nextItem()
}

func (p *Parser) parseLabel() error {
	for _, n := range p.Nodes {
		if l, ok := n.(*Label); ok && l.Name == p.currToken.val {
			return fmt.Errorf("duplicate label %q", l.Name)
		}
	}
	p.Nodes = append(p.Nodes, &Label{Name: p.currToken.val})
	return nil
}

// parseOperands consumes a comma separated list up to the end of the line.
func (p *Parser) parseOperands() ([]Operand, error) {
	var operands []Operand
	for !p.peekToken.typ.isEOL() {
		p.nextToken()
		if len(operands) > 0 {
			if p.currToken.typ != itemComa {
				return nil, fmt.Errorf("expected %c, got %s", SeparatorChar, p.currToken)
			}
			p.nextToken()
		}
		if p.currToken.typ != itemIdentifier && p.currToken.typ != itemNumber {
			return nil, fmt.Errorf("expected operand, got %s", p.currToken)
		}
		o, err := newOperand(p.currToken)
		if err != nil {
			return nil, err
		}
		operands = append(operands, o)
	}
	return operands, nil
}

func (p *Parser) parseInstruction() error {
	ins := &Instruction{
		Mnemonic: strings.ToLower(p.currToken.val),
		Line:     p.currToken.line,
	}
	operands, err := p.parseOperands()
	if err != nil {
		return fmt.Errorf("%s: %w", ins.Mnemonic, err)
	}
	ins.Operands = operands
	if err := ins.resolveKind(); err != nil {
		return err
	}
	p.Nodes = append(p.Nodes, ins)
	return nil
}

func (p *Parser) parseDirective() error {
	d := &Directive{
		Name: strings.ToLower(strings.TrimPrefix(p.currToken.val, string(DirectiveChar))),
	}
	if d.Name != DirectiveByte && d.Name != DirectiveWord {
		return fmt.Errorf("unknown directive %q", p.currToken.val)
	}
	operands, err := p.parseOperands()
	if err != nil {
		return fmt.Errorf("%c%s: %w", DirectiveChar, d.Name, err)
	}
	if len(operands) == 0 {
		return fmt.Errorf("%c%s: missing value", DirectiveChar, d.Name)
	}
	for _, o := range operands {
		if o.Typ != OpNumber && o.Typ != OpLabelRef {
			return fmt.Errorf("%c%s: invalid value %s", DirectiveChar, d.Name, o)
		}
	}
	d.Values = operands
	p.Nodes = append(p.Nodes, d)
	return nil
}

// Parse reads the whole input into p.Nodes.
func (p *Parser) Parse() error {
	for {
		p.nextToken()
		item := p.currToken
		if item.typ == itemEOF {
			break
		}
		if item.typ == itemError {
			return fmt.Errorf("[%d:%d]: %s", item.line, item.pos, item.val)
		}

		var err error
		switch item.typ {
		case itemNewline, itemComment:
			continue
		case itemLabel:
			err = p.parseLabel()
		case itemDirective:
			err = p.parseDirective()
		case itemIdentifier:
			err = p.parseInstruction()
		default:
			return fmt.Errorf("[%d:%d]: unexpected item %s", item.line, item.pos, item)
		}
		if err != nil {
			return fmt.Errorf("[%d:%d]: %w", item.line, item.pos, err)
		}
	}

	return nil
}
