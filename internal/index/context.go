package index

import (
	"github.com/RoaringBitmap/roaring"
)

// FormalContext is a bitmap incidence table between commands (objects,
// numbered by 0-based position) and their features (attributes of the
// table). Storage is column-major: each feature has a bitmap of the
// commands that possess it.
type FormalContext struct {
	ObjectCount int
	Features    []Feature
	columns     []*roaring.Bitmap // columns[j] = commands with feature j
	rows        []*roaring.Bitmap // rows[i] = features of command i (lazy)
	featIndex   map[string]int    // feature name → column
}

// NewFormalContext creates a FormalContext from a pre-built incidence table.
// Feature names are taken as given, with kind Verb; it is meant for tests
// with known cross-tables.
func NewFormalContext(objectCount int, names []string, incidence [][]bool) *FormalContext {
	feats := make([]Feature, len(names))
	for i, n := range names {
		feats[i] = Feature{Name: n, Value: n}
	}
	ctx := newContext(objectCount, feats)
	for i, row := range incidence {
		for j, has := range row {
			if has {
				ctx.columns[j].Add(uint32(i))
			}
		}
	}
	return ctx
}

func newContext(objectCount int, feats []Feature) *FormalContext {
	ctx := &FormalContext{
		ObjectCount: objectCount,
		Features:    feats,
		columns:     make([]*roaring.Bitmap, len(feats)),
		featIndex:   make(map[string]int, len(feats)),
	}
	for j := range feats {
		ctx.columns[j] = roaring.New()
		ctx.featIndex[feats[j].Name] = j
	}
	return ctx
}

// Column returns the column number of the named feature.
func (ctx *FormalContext) Column(name string) (int, bool) {
	j, ok := ctx.featIndex[name]
	return j, ok
}

// FeatureSet converts feature names to a column bitmap. Unknown names are
// reported by the second result.
func (ctx *FormalContext) FeatureSet(names ...string) (*roaring.Bitmap, []string) {
	set := roaring.New()
	var unknown []string
	for _, n := range names {
		j, ok := ctx.featIndex[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		set.Add(uint32(j))
	}
	return set, unknown
}

// Names converts a column bitmap back to feature names.
func (ctx *FormalContext) Names(cols *roaring.Bitmap) []string {
	out := make([]string, 0, cols.GetCardinality())
	it := cols.Iterator()
	for it.HasNext() {
		j := int(it.Next())
		if j < len(ctx.Features) {
			out = append(out, ctx.Features[j].Name)
		}
	}
	return out
}

// AttrDeriv computes B': the commands that have every feature in B.
func (ctx *FormalContext) AttrDeriv(feats *roaring.Bitmap) *roaring.Bitmap {
	if feats.IsEmpty() {
		all := roaring.New()
		all.AddRange(0, uint64(ctx.ObjectCount))
		return all
	}
	var result *roaring.Bitmap
	it := feats.Iterator()
	for it.HasNext() {
		j := it.Next()
		if int(j) >= len(ctx.columns) {
			return roaring.New()
		}
		if result == nil {
			result = ctx.columns[j].Clone()
		} else {
			result.And(ctx.columns[j])
		}
	}
	return result
}

// ObjectDeriv computes A': the features shared by every command in A.
func (ctx *FormalContext) ObjectDeriv(objs *roaring.Bitmap) *roaring.Bitmap {
	if objs.IsEmpty() {
		all := roaring.New()
		all.AddRange(0, uint64(len(ctx.Features)))
		return all
	}
	ctx.ensureRows()
	var result *roaring.Bitmap
	it := objs.Iterator()
	for it.HasNext() {
		i := it.Next()
		if int(i) >= len(ctx.rows) {
			return roaring.New()
		}
		if result == nil {
			result = ctx.rows[i].Clone()
		} else {
			result.And(ctx.rows[i])
		}
	}
	return result
}

// Closure computes B'' = (B')'.
func (ctx *FormalContext) Closure(feats *roaring.Bitmap) *roaring.Bitmap {
	return ctx.ObjectDeriv(ctx.AttrDeriv(feats))
}

// ensureRows derives row bitmaps from the columns on first use.
func (ctx *FormalContext) ensureRows() {
	if ctx.rows != nil {
		return
	}
	rows := make([]*roaring.Bitmap, ctx.ObjectCount)
	for i := range rows {
		rows[i] = roaring.New()
	}
	for j, col := range ctx.columns {
		it := col.Iterator()
		for it.HasNext() {
			rows[it.Next()].Add(uint32(j))
		}
	}
	ctx.rows = rows
}
