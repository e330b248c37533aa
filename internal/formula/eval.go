package formula

import "math"

// evalExpr evaluates a substituted arithmetic expression with a recursive
// descent parser over a strictly whitelisted token set: digits, decimal
// points, + - * / and parentheses. There is no interpreter underneath; an
// unexpected byte, trailing input, or a NaN/Inf result all fail.
func evalExpr(input string) (float64, bool) {
	p := &exprParser{input: input}
	v, ok := p.parseAddSub()
	if !ok {
		return 0, false
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) parseAddSub() (float64, bool) {
	v, ok := p.parseMulDiv()
	if !ok {
		return 0, false
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			break
		}
		p.pos++
		rhs, ok := p.parseMulDiv()
		if !ok {
			return 0, false
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, true
}

func (p *exprParser) parseMulDiv() (float64, bool) {
	v, ok := p.parseUnary()
	if !ok {
		return 0, false
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			break
		}
		p.pos++
		rhs, ok := p.parseUnary()
		if !ok {
			return 0, false
		}
		if op == '*' {
			v *= rhs
		} else {
			if rhs == 0 {
				return 0, false
			}
			v /= rhs
		}
	}
	return v, true
}

func (p *exprParser) parseUnary() (float64, bool) {
	p.skipSpaces()
	if p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '-':
			p.pos++
			v, ok := p.parseUnary()
			return -v, ok
		case '+':
			p.pos++
			return p.parseUnary()
		}
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}
	if p.input[p.pos] == '(' {
		p.pos++
		v, ok := p.parseAddSub()
		if !ok {
			return 0, false
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, false
		}
		p.pos++
		return v, true
	}
	return p.parseNumber()
}

func (p *exprParser) parseNumber() (float64, bool) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	if p.pos == start || (p.pos == start+1 && seenDot) {
		return 0, false
	}
	v := 0.0
	frac := 0.0
	scale := 0.1
	inFrac := false
	for i := start; i < p.pos; i++ {
		c := p.input[i]
		if c == '.' {
			inFrac = true
			continue
		}
		d := float64(c - '0')
		if inFrac {
			frac += d * scale
			scale /= 10
		} else {
			v = v*10 + d
		}
	}
	return v + frac, true
}
