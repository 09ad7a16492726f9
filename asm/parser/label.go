package parser

type Label struct {
	Name string
}

func (l Label) String() string { return l.Name + string(LabelChar) }

func (l Label) Encode(p *Program) error {
	p.labels[l.Name] = p.pc()
	return nil
}
