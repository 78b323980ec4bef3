package ast

import "fmt"

// CommandType is the verb of a command.
type CommandType uint8

const (
	CommandAdd CommandType = iota
	CommandRemove
	CommandModify
	CommandFrom

	commandTypeCount
)

var commandTypeNames = [commandTypeCount]string{
	CommandAdd:    "Add",
	CommandRemove: "Remove",
	CommandModify: "Modify",
	CommandFrom:   "From",
}

// CommandTypes returns every command type in declaration order.
func CommandTypes() []CommandType {
	return []CommandType{CommandAdd, CommandRemove, CommandModify, CommandFrom}
}

func (t CommandType) Valid() bool {
	return t < commandTypeCount
}

func (t CommandType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("CommandType(%d)", uint8(t))
	}
	return commandTypeNames[t]
}

// ParseCommandType resolves "Add", "Remove", "Modify" or "From".
func ParseCommandType(s string) (CommandType, error) {
	for t, name := range commandTypeNames {
		if name == s {
			return CommandType(t), nil
		}
	}
	return 0, InvalidValue("type", s)
}

func (t CommandType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, InvalidValue("type", t.String())
	}
	return []byte(t.String()), nil
}

func (t *CommandType) UnmarshalText(text []byte) error {
	v, err := ParseCommandType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Command is one step of an OCA script.
type Command struct {
	Kind       CommandType
	ObjectKind ObjectKind
}

// Equal reports whether two commands have the same verb and target.
func (c Command) Equal(o Command) bool {
	return c.Kind == o.Kind && ObjectKindEqual(c.ObjectKind, o.ObjectKind)
}

func (c Command) String() string {
	return c.Kind.String() + " " + KindName(c.ObjectKind)
}

// validate checks what the type system cannot: a known verb and an object
// kind with a code.
func (c Command) validate() error {
	if !c.Kind.Valid() {
		return InvalidValue("type", c.Kind.String())
	}
	if c.ObjectKind == nil {
		return MissingField("object_kind")
	}
	_, err := ToInt(c.ObjectKind)
	return err
}

// CommandMeta records where a command came from in the source script. It is
// used for diagnostics only.
type CommandMeta struct {
	LineNumber int
	RawLine    string
}

func (m CommandMeta) String() string {
	return fmt.Sprintf("line %d: %s", m.LineNumber, m.RawLine)
}
