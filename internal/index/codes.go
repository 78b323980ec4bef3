package index

import "github.com/agentic-research/ocaast/ast"

// CodeRow is one entry of the object-kind code table.
type CodeRow struct {
	Code      int    `json:"code"`
	Kind      string `json:"kind"`
	Canonical string `json:"canonical,omitempty"` // overlays only
}

// CodeTable lists every object-kind code in ascending order.
func CodeTable() []CodeRow {
	rows := make([]CodeRow, 0, ast.MaxObjectKindCode+1)
	for n := 0; n <= ast.MaxObjectKindCode; n++ {
		k, err := ast.FromInt(n)
		if err != nil {
			continue
		}
		row := CodeRow{Code: n, Kind: string(k.Type())}
		if ov, ok := ast.AsOverlay(k); ok {
			row.Kind = ov.OverlayType.ShortName()
			row.Canonical = ov.OverlayType.Serialize()
		}
		rows = append(rows, row)
	}
	return rows
}
