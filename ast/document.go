package ast

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// DefaultVersion is used when a document does not declare one.
const DefaultVersion = "1.0.0"

// OCAAst is a decoded OCA document: an ordered list of commands, optional
// per-command source metadata keyed by 1-based position, and free-form
// metadata. An OCAAst is immutable; obtain one from a Builder or a decoder.
type OCAAst struct {
	version      string
	commands     []Command
	commandsMeta map[int]CommandMeta
	meta         Fields[string]
}

// Version returns the document format version. A zero document reports
// DefaultVersion.
func (a *OCAAst) Version() string {
	if a.version == "" {
		return DefaultVersion
	}
	return a.version
}

// Len returns the number of commands.
func (a *OCAAst) Len() int { return len(a.commands) }

// Command returns the command at 0-based position i.
func (a *OCAAst) Command(i int) Command { return a.commands[i] }

// Commands returns a copy of the command list.
func (a *OCAAst) Commands() []Command { return slices.Clone(a.commands) }

// All iterates the commands in script order with their 0-based positions.
func (a *OCAAst) All() iter.Seq2[int, Command] {
	return slices.All(a.commands)
}

// CommandMeta returns the source metadata of the command at 1-based
// position n, if recorded.
func (a *OCAAst) CommandMeta(n int) (CommandMeta, bool) {
	m, ok := a.commandsMeta[n]
	return m, ok
}

// MetaIndexes returns the 1-based positions that carry metadata, ascending.
func (a *OCAAst) MetaIndexes() []int {
	return slices.Sorted(maps.Keys(a.commandsMeta))
}

// Meta returns the document's free-form metadata.
func (a *OCAAst) Meta() Fields[string] { return a.meta }

// Equal reports whether two documents are structurally equal.
func (a *OCAAst) Equal(b *OCAAst) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Version() == b.Version() &&
		slices.EqualFunc(a.commands, b.commands, Command.Equal) &&
		maps.Equal(a.commandsMeta, b.commandsMeta) &&
		fieldsEqual(a.meta, b.meta, func(x, y string) bool { return x == y })
}

// Describe renders the command at 0-based position i with its source line
// when known, for error messages.
func (a *OCAAst) Describe(i int) string {
	if m, ok := a.commandsMeta[i+1]; ok {
		return fmt.Sprintf("%s (%s)", a.commands[i], m)
	}
	return a.commands[i].String()
}

// Builder assembles an OCAAst. It is the entry point for script parsers:
// push each parsed command with its source line, then call Build.
type Builder struct {
	version      string
	commands     []Command
	commandsMeta map[int]CommandMeta
	meta         []Entry[string]
}

// NewBuilder starts a document of the given version; an empty version
// means DefaultVersion.
func NewBuilder(version string) *Builder {
	if version == "" {
		version = DefaultVersion
	}
	return &Builder{version: version, commandsMeta: make(map[int]CommandMeta)}
}

// Push appends a command without source metadata.
func (b *Builder) Push(cmd Command) *Builder {
	b.commands = append(b.commands, cmd)
	return b
}

// PushWithMeta appends a command and records where it came from.
func (b *Builder) PushWithMeta(cmd Command, meta CommandMeta) *Builder {
	b.commands = append(b.commands, cmd)
	b.commandsMeta[len(b.commands)] = meta
	return b
}

// Meta sets a free-form metadata entry.
func (b *Builder) Meta(key, value string) *Builder {
	b.meta = append(b.meta, Entry[string]{Name: key, Value: value})
	return b
}

// Build validates the accumulated commands and returns the document. The
// builder may be reused; the document does not share state with it.
func (b *Builder) Build() (*OCAAst, error) {
	for i, cmd := range b.commands {
		if err := cmd.validate(); err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
	}
	for _, n := range slices.Sorted(maps.Keys(b.commandsMeta)) {
		if err := validateMeta(n, b.commandsMeta[n], len(b.commands)); err != nil {
			return nil, err
		}
	}
	return &OCAAst{
		version:      b.version,
		commands:     slices.Clone(b.commands),
		commandsMeta: maps.Clone(b.commandsMeta),
		meta:         newFields(b.meta...),
	}, nil
}

func validateMeta(n int, m CommandMeta, count int) error {
	field := fmt.Sprintf("commands_meta.%d", n)
	if n < 1 || n > count {
		return InvalidValue(field, n)
	}
	if m.LineNumber < 1 {
		return InvalidValue(field+".line_number", m.LineNumber)
	}
	return nil
}
