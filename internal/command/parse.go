package command

import (
	"fmt"
	"strconv"
	"unicode"
)

// Parse reads a program in compact notation:
//
//	F        move forward
//	L        turn left
//	R        turn right
//	3[F F]   loop: run the bracketed body 3 times (nestable)
//
// Tokens are separated by whitespace or commas; letters are case-insensitive.
// A loop count of zero or less is accepted and clamped to 1, matching NewLoop.
func Parse(src string) ([]Command, error) {
	p := &parser{src: []rune(src)}
	program, err := p.parseProgram(false)
	if err != nil {
		return nil, err
	}
	return program, nil
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) parseProgram(inLoop bool) ([]Command, error) {
	var out []Command
	for {
		p.skipSeparators()
		if p.pos >= len(p.src) {
			if inLoop {
				return nil, fmt.Errorf("program: unclosed loop at end of input")
			}
			return out, nil
		}

		ch := p.src[p.pos]
		switch {
		case ch == ']':
			if !inLoop {
				return nil, fmt.Errorf("program: unexpected ']' at offset %d", p.pos)
			}
			p.pos++
			return out, nil

		case ch == 'F' || ch == 'f':
			p.pos++
			out = append(out, Forward)

		case ch == 'L' || ch == 'l':
			p.pos++
			out = append(out, TurnLeft)

		case ch == 'R' || ch == 'r':
			p.pos++
			out = append(out, TurnRight)

		case unicode.IsDigit(ch) || ch == '-':
			loop, err := p.parseLoop()
			if err != nil {
				return nil, err
			}
			out = append(out, loop)

		default:
			return nil, fmt.Errorf("program: unexpected %q at offset %d", string(ch), p.pos)
		}
	}
}

func (p *parser) parseLoop() (Loop, error) {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && unicode.IsDigit(p.src[p.pos]) {
		p.pos++
	}
	count, err := strconv.Atoi(string(p.src[start:p.pos]))
	if err != nil {
		return Loop{}, fmt.Errorf("program: bad loop count at offset %d", start)
	}

	p.skipSeparators()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return Loop{}, fmt.Errorf("program: expected '[' after loop count at offset %d", p.pos)
	}
	p.pos++

	body, err := p.parseProgram(true)
	if err != nil {
		return Loop{}, err
	}
	return NewLoop(count, body...), nil
}

func (p *parser) skipSeparators() {
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		if ch == ',' || unicode.IsSpace(ch) {
			p.pos++
			continue
		}
		return
	}
}
