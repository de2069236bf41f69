// Package parser reads the command line of the interactive play session.
package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer splits a line into slash commands, integers and whitespace separated words.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Command", Pattern: `/[a-zA-Z]+`},
	{Name: "Int", Pattern: `[-+]?\d+\b`},
	{Name: "Word", Pattern: `[^\s]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Build creates the parser from the struct tags in ast.go.
func Build() *participle.Parser[Line] {
	return participle.MustBuild[Line](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Command"),
	)
}

// Parse reads one line, mapping grammar errors to usage hints.
func Parse(p *participle.Parser[Line], input string) (*Line, error) {
	line, err := p.ParseString("", input)
	if err != nil {
		return nil, MapError(input, err)
	}
	return line, nil
}
