// Package example demonstrates documentation rendering.
//
// It exercises every node classification: types, methods, accessor
// properties, factory functions, data, and submodules.
package example

import (
	"fmt"
	"strings"
	"sync"

	"github.com/st1020/sophia-doc/testdata/example/subpkg"
)

// MaxRetries bounds how often a greeting is retried.
var MaxRetries = 3

var Threshold = 5 // Threshold is the alert limit.

// DefaultMessage mirrors the subpackage constant.
var DefaultMessage = subpkg.Message

// Handler is bound to an anonymous function.
var Handler = func(msg string) string { return msg }

// Level is the verbosity level of a greeter.
type Level int

const (
	// Quiet suppresses all output.
	Quiet Level = iota
	// Verbose prints every greeting.
	Verbose
)

// Speaker is anything that can produce speech.
type Speaker interface {
	// Speak says something.
	Speak() string
}

// Base provides shared greeter behavior.
type Base struct{}

// Describe returns a human readable description.
func (b Base) Describe() string { return "base" }

// Reset restores the default state.
func (b Base) Reset() {}

// Greeter greets people by name.
//
// Attributes:
//	Prefix: The string placed before every greeting.
type Greeter struct {
	Base

	// Prefix is placed before every greeting.
	Prefix string
	// Hook runs after every greeting has been produced.
	Hook func(string)

	name       string
	id         int
	report     string
	reportOnce sync.Once
}

// NewGreeter returns a Greeter with the given prefix.
func NewGreeter(prefix string) *Greeter {
	return &Greeter{Prefix: prefix, id: 1}
}

// Name returns the greeter's current name.
func (g *Greeter) Name() string { return g.name }

// SetName changes the greeter's name.
func (g *Greeter) SetName(name string) { g.name = name }

// ID returns the stable identifier of this greeter.
func (g *Greeter) ID() int { return g.id }

// Report builds the usage report on first access.
func (g *Greeter) Report() string {
	g.reportOnce.Do(func() {
		g.report = fmt.Sprintf("%s greeted", g.name)
	})
	return g.report
}

// Greet greets someone by name.
//
// Args:
//	who: The name to greet.
//
// Returns:
//	string: The greeting line.
func (g *Greeter) Greet(who string) string {
	line := g.Prefix + who
	if g.Hook != nil {
		g.Hook(line)
	}
	return line
}

func (g *Greeter) Describe() string { return "greeter " + g.name }

// ParseError reports an unparsable greeting spec.
type ParseError struct {
	// Spec is the input that failed to parse.
	Spec string
}

func (e *ParseError) Error() string { return "cannot parse " + e.Spec }

// Shout yells a message.
//
// Args:
//	message: The text to yell.
//	volume: How loud to yell it.
//
// Raises:
//	ParseError: If the message cannot be parsed.
func Shout(message string) string { return message + "!" }

// Stream emits greetings asynchronously.
//
// Args:
//	count: How many greetings to emit.
func Stream(count int) <-chan string {
	ch := make(chan string, count)
	go func() {
		defer close(ch)
		for i := 0; i < count; i++ {
			ch <- "hi"
		}
	}()
	return ch
}

// Join concatenates words into a single greeting line.
func Join(words ...string) string {
	return strings.Join(words, " ")
}

// internalHelper is unexported and never documented.
func internalHelper() {}
