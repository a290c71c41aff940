package exchange

import (
	"errors"
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/bourse/constants"
)

//
// Info is an ordered, human-oriented description of a handle. Each entry's value is a literal, a
// nested Info, or a function evaluated only when the description is rendered. A function that fails
// with ErrInsufficientInformation renders as an unknown-value placeholder instead of failing.
//
type Info struct {
	title   string
	entries []infoEntry
}

type infoEntry struct {
	key   string
	value any
}

//
// InfoLine is a single rendered entry. Nested is set when the entry's value is itself an Info.
//
type InfoLine struct {
	Key    string
	Value  string
	Known  bool
	Nested *Info
}

func NewInfo(title string) *Info {
	return &Info{title: title}
}

func (o *Info) Title() string {
	return o.title
}

//
// Add appends a literal entry. The value is rendered with fmt.Sprint.
//
func (o *Info) Add(key string, value any) *Info {
	o.entries = append(o.entries, infoEntry{key: key, value: value})

	return o
}

//
// AddLazy appends an entry whose value is computed when rendered. The function may return a nested
// *Info.
//
func (o *Info) AddLazy(key string, fn func() (any, error)) *Info {
	o.entries = append(o.entries, infoEntry{key: key, value: fn})

	return o
}

//
// Lines evaluates every entry in order. Errors other than ErrInsufficientInformation are rendered
// inline so that a description never fails as a whole.
//
func (o *Info) Lines() []InfoLine {
	lines := make([]InfoLine, 0, len(o.entries))

	for _, e := range o.entries {
		value := e.value

		if fn, ok := value.(func() (any, error)); ok {
			v, err := fn()

			switch {
			case errors.Is(err, ErrInsufficientInformation):
				lines = append(lines, InfoLine{Key: e.key, Value: constants.Unknown})
				continue

			case err != nil:
				lines = append(lines, InfoLine{Key: e.key, Value: fmt.Sprintf("<error: %s>", err)})
				continue
			}

			value = v
		}

		if nested, ok := value.(*Info); ok {
			lines = append(lines, InfoLine{Key: e.key, Known: true, Nested: nested})
			continue
		}

		lines = append(lines, InfoLine{Key: e.key, Value: fmt.Sprint(value), Known: true})
	}

	return lines
}

//
// Format renders the description as indented "Key: Value" lines under its title. Keys are bold and
// unknown values are highlighted; pass aurora.NewAurora(false) for plain text.
//
func (o *Info) Format(au aurora.Aurora) string {
	var b strings.Builder

	b.WriteString(fmt.Sprint(au.Bold(o.title)))
	b.WriteString("\n")
	o.format(&b, au, 1)

	return b.String()
}

func (o *Info) String() string {
	return o.Format(aurora.NewAurora(false))
}

func (o *Info) format(b *strings.Builder, au aurora.Aurora, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, line := range o.Lines() {
		b.WriteString(indent)
		b.WriteString(fmt.Sprint(au.Bold(line.Key + ":")))

		switch {
		case line.Nested != nil:
			b.WriteString(" ")
			b.WriteString(line.Nested.title)
			b.WriteString("\n")
			line.Nested.format(b, au, depth+1)

		case !line.Known:
			b.WriteString(" ")
			b.WriteString(fmt.Sprint(au.Yellow(line.Value)))
			b.WriteString("\n")

		default:
			b.WriteString(" ")
			b.WriteString(line.Value)
			b.WriteString("\n")
		}
	}
}
