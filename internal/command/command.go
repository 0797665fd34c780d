// Package command defines the program tree the interpreter executes: atomic
// movement steps and bounded loops of sub-programs. Commands are immutable
// once constructed; loops may nest arbitrarily deep.
package command

import "strconv"

// Command is a node in a program tree: either a Step or a Loop.
type Command interface {
	command()
}

// Step is an atomic player action.
type Step int

const (
	// Forward moves the player one cell in its facing direction.
	Forward Step = iota
	// TurnLeft rotates the player 90° counter-clockwise.
	TurnLeft
	// TurnRight rotates the player 90° clockwise.
	TurnRight
)

func (Step) command() {}

func (s Step) String() string {
	switch s {
	case Forward:
		return "forward"
	case TurnLeft:
		return "turn-left"
	case TurnRight:
		return "turn-right"
	default:
		return "unknown"
	}
}

// Loop runs its body Times times in order. A loop with no repeats still runs
// once: Times is clamped to a minimum of 1 so a zero or negative count never
// silently skips the body. That quirk is intentional and matches NewLoop.
type Loop struct {
	Times int
	Body  []Command
}

func (Loop) command() {}

// NewLoop builds a loop over body, clamping times to at least 1.
func NewLoop(times int, body ...Command) Loop {
	if times < 1 {
		times = 1
	}
	return Loop{Times: times, Body: body}
}

// CountSteps returns the number of atomic steps a program would execute if
// nothing failed, with loops fully expanded.
func CountSteps(program []Command) int {
	n := 0
	for _, c := range program {
		switch cmd := c.(type) {
		case Step:
			n++
		case Loop:
			times := cmd.Times
			if times < 1 {
				times = 1
			}
			n += times * CountSteps(cmd.Body)
		}
	}
	return n
}

// Format renders a program in the compact notation accepted by Parse.
func Format(program []Command) string {
	out := ""
	for i, c := range program {
		if i > 0 {
			out += " "
		}
		switch cmd := c.(type) {
		case Step:
			switch cmd {
			case Forward:
				out += "F"
			case TurnLeft:
				out += "L"
			case TurnRight:
				out += "R"
			}
		case Loop:
			out += strconv.Itoa(cmd.Times) + "[" + Format(cmd.Body) + "]"
		}
	}
	return out
}
