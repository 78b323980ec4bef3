package index

import "github.com/RoaringBitmap/roaring"

// MaxConcepts caps concept enumeration; documents with wider lattices are
// truncated.
const MaxConcepts = 10000

// Concept is a maximal group of commands together with every feature they
// share: Extent' = Intent and Intent' = Extent.
type Concept struct {
	Extent *roaring.Bitmap // command positions
	Intent *roaring.Bitmap // feature columns
}

// NextClosure enumerates the concepts of ctx with Ganter's algorithm, in
// lectic order of their intents.
func NextClosure(ctx *FormalContext) []Concept {
	n := len(ctx.Features)
	if n == 0 {
		return nil
	}

	intent := ctx.Closure(roaring.New())
	concepts := []Concept{{Extent: ctx.AttrDeriv(intent), Intent: intent}}

	current := intent.Clone()
	for len(concepts) < MaxConcepts {
		next := nextClosedSet(ctx, current, n)
		if next == nil {
			break
		}
		concepts = append(concepts, Concept{Extent: ctx.AttrDeriv(next), Intent: next})
		current = next
	}
	return concepts
}

// nextClosedSet returns the lectically next closed set after current, or nil
// when current is the full feature set.
func nextClosedSet(ctx *FormalContext, current *roaring.Bitmap, n int) *roaring.Bitmap {
	for i := n - 1; i >= 0; i-- {
		ui := uint32(i)
		if current.Contains(ui) {
			continue
		}

		// (current ∩ {0..i-1}) ∪ {i}
		b := current.Clone()
		b.RemoveRange(uint64(ui), uint64(n))
		b.Add(ui)
		c := ctx.Closure(b)

		// Canonicity: closing must not add a column below i.
		below := c.Clone()
		below.RemoveRange(uint64(ui), uint64(n))
		prefix := current.Clone()
		prefix.RemoveRange(uint64(ui), uint64(n))
		if below.Equals(prefix) {
			return c
		}
	}
	return nil
}
