// The jscript package reads object initializations out of inline
// Javascript, which is almost but not quite JSON: property names come
// unquoted, strings may use apostrophes. Schedule pages that embed their
// data as a script block (bluewin) are parsed with it.
//
// Locate the object with ObjectAtAnchor, then Parse the raw bytes into a
// generic Structure and read fields through the typed accessors.

package jscript

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
)

// Structure is a brace-delimited list of properties.
type Structure struct {
	Properties []*Property `parser:"\"{\" [ @@ { \",\" @@ } ] \"}\""`
}

// Property is a named value. The name is optional so that bare values
// inside arrays reuse the same node.
type Property struct {
	Name  string `parser:"[ ( @(String) | @(Ident) ) \":\" ]"`
	Value *Value `parser:"@@"`
}

// Value is one of: string, nested structure, null, array, bare word
// (true/false or an identifier), number.
type Value struct {
	Str     *string    `parser:"@(String)"`
	Struct  *Structure `parser:"| @@"`
	NullStr *string    `parser:"| \"null\""`
	Ar      []*Value   `parser:"| \"[\" { @@ { \",\" @@ } } \"]\""`
	Word    *string    `parser:"| @(Bool) | @(Ident)"`
	Number  *float64   `parser:"| @(Number)"`
}

// Token classes: structural characters, booleans, unquoted identifiers,
// quoted strings with escapes, null, numbers, whitespace.
const jsTokens = `(\s+)` +
	`|(?P<Bool>(?:true|false)\b)` +
	`|(?P<Null>null\b)` +
	`|(?P<Ident>[\p{L}_][\p{L}\d_]*)` +
	`|(?P<String>'[^'\\]*(?:\\.[^'\\]*)*'|"[^"\\]*(?:\\.[^"\\]*)*")` +
	`|(?P<Structure>[,;{}\[\]:])` +
	`|(?P<Number>-?\d+(?:\.\d+)?)`

var jsParser = participle.MustBuild(
	&Structure{},
	participle.Lexer(lexer.Must(lexer.Regexp(jsTokens))),
	participle.Unquote("String"),
	participle.UseLookahead(1),
)

// Parse reads a Javascript object literal into a *Structure.
func Parse(b []byte) (*Structure, error) {
	s := &Structure{}
	if err := jsParser.ParseBytes(b, s); err != nil {
		return nil, fmt.Errorf("can't parse object literal: %w", err)
	}
	return s, nil
}

// Field returns the value of the named property, or nil.
func (s *Structure) Field(name string) *Value {
	if s == nil {
		return nil
	}
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Value
		}
	}
	return nil
}

// String returns the value as a string. Bare words qualify; anything else
// yields "".
func (v *Value) String() string {
	switch {
	case v == nil:
		return ""
	case v.Str != nil:
		return *v.Str
	case v.Word != nil:
		return *v.Word
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	}
	return ""
}

// Int returns the value as an integer, 0 when it isn't one.
func (v *Value) Int() int {
	if v == nil {
		return 0
	}
	if v.Number != nil {
		return int(*v.Number)
	}
	if v.Str != nil {
		if n, err := strconv.Atoi(*v.Str); err == nil {
			return n
		}
	}
	return 0
}

// Bool returns the value as a boolean.
func (v *Value) Bool() bool {
	return v != nil && v.Word != nil && *v.Word == "true"
}

// Items returns the array elements, nil when the value is not an array.
func (v *Value) Items() []*Value {
	if v == nil {
		return nil
	}
	return v.Ar
}

// Object returns the nested structure, nil when the value is not one.
func (v *Value) Object() *Structure {
	if v == nil {
		return nil
	}
	return v.Struct
}
