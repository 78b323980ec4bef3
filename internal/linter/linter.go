// Package linter reports suspicious but decodable constructs in an OCA
// document. Decoding already rejects malformed documents; these checks look
// at how commands relate to each other.
package linter

import (
	"fmt"
	"slices"

	"github.com/agentic-research/ocaast/ast"
)

// Severity ranks a diagnostic.
type Severity int

const (
	Warning Severity = iota
	Info
)

func (s Severity) String() string {
	if s == Info {
		return "info"
	}
	return "warning"
}

// Diagnostic is one finding, tied to a command position.
type Diagnostic struct {
	Rule     string
	Severity Severity
	Position int // 0-based command position
	Line     int // source line, 0 when unknown
	Message  string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s [%s]", d.Line, d.Severity, d.Message, d.Rule)
	}
	return fmt.Sprintf("command %d: %s: %s [%s]", d.Position+1, d.Severity, d.Message, d.Rule)
}

// Lint checks doc and returns diagnostics ordered by command position.
func Lint(doc *ast.OCAAst) []Diagnostic {
	var diags []Diagnostic
	report := func(rule string, sev Severity, pos int, format string, args ...any) {
		d := Diagnostic{Rule: rule, Severity: sev, Position: pos, Message: fmt.Sprintf(format, args...)}
		if m, ok := doc.CommandMeta(pos + 1); ok {
			d.Line = m.LineNumber
		}
		diags = append(diags, d)
	}

	// Attributes declared by capture bases seen so far.
	declared := make(map[string]bool)
	sawCaptureBase := false

	for i, cmd := range doc.All() {
		if c, ok := ast.AsCaptureContent(cmd.ObjectKind); ok {
			sawCaptureBase = true
			for _, name := range c.FlaggedAttributes() {
				if _, ok := c.Attributes.Get(name); !ok && !declared[name] {
					report("flagged-undeclared", Warning, i,
						"flagged attribute %q is not declared", name)
				}
			}
			for _, name := range c.Attributes.Keys() {
				if cmd.Kind == ast.CommandRemove {
					delete(declared, name)
				} else {
					declared[name] = true
				}
			}
			if cmd.Kind == ast.CommandRemove && c.Attributes.Len() == 0 && c.Properties.Len() == 0 {
				report("empty-remove", Info, i, "remove of a capture base names nothing")
			}
		}

		if ov, ok := ast.AsOverlay(cmd.ObjectKind); ok {
			if sawCaptureBase {
				for _, name := range ov.Content.Attributes.Keys() {
					if !declared[name] {
						report("overlay-undeclared", Warning, i,
							"%s overlay describes undeclared attribute %q", ov.OverlayType.ShortName(), name)
					}
				}
			}
			if cmd.Kind != ast.CommandRemove && ov.Content.Attributes.Len() == 0 && ov.Content.Properties.Len() == 0 {
				report("empty-overlay", Info, i, "%s overlay has no content", ov.OverlayType.ShortName())
			}
		}

		if b, ok := ast.AsBundleContent(cmd.ObjectKind); ok {
			if b.Said.Ref.Kind != ast.RefSaid {
				report("bundle-by-name", Warning, i,
					"bundle is referenced by name %q, not by SAID", b.Said.Ref.ID)
			}
			if cmd.Kind == ast.CommandFrom && i > 0 {
				report("late-from", Warning, i, "FROM is not the first command")
			}
		}
	}

	slices.SortStableFunc(diags, func(a, b Diagnostic) int { return a.Position - b.Position })
	return diags
}
