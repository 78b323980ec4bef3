package ast

import "fmt"

// ObjectKindType is the wire discriminant of an ObjectKind.
type ObjectKindType string

const (
	TypeCaptureBase ObjectKindType = "CaptureBase"
	TypeOCABundle   ObjectKindType = "OCABundle"
	TypeOverlay     ObjectKindType = "Overlay"

	// Older documents name the bundle discriminant after its content.
	typeBundleContent ObjectKindType = "BundleContent"
)

// Object-kind integer codes. Overlays occupy codeOverlayBase + OverlayType.
const (
	codeCaptureBase = 0
	codeOCABundle   = 1
	codeOverlayBase = 2

	// MaxObjectKindCode is the largest valid object-kind code.
	MaxObjectKindCode = codeOverlayBase + int(overlayTypeCount) - 1
)

// ObjectKind is the target of a command: exactly one of CaptureContent,
// BundleContent or Overlay. The interface is sealed; switch on the concrete
// type to handle each variant.
type ObjectKind interface {
	Type() ObjectKindType
	isObjectKind()
}

func (CaptureContent) Type() ObjectKindType { return TypeCaptureBase }
func (BundleContent) Type() ObjectKindType  { return TypeOCABundle }
func (Overlay) Type() ObjectKindType        { return TypeOverlay }

func (CaptureContent) isObjectKind() {}
func (BundleContent) isObjectKind()  {}
func (Overlay) isObjectKind()        {}

// CaptureBase tags c as a capture-base object kind.
func CaptureBase(c CaptureContent) ObjectKind {
	return c
}

// OCABundle tags b as a bundle object kind.
func OCABundle(b BundleContent) ObjectKind {
	return b
}

// NewOverlay builds an overlay object kind.
func NewOverlay(t OverlayType, c Content) ObjectKind {
	return Overlay{OverlayType: t, Content: c}
}

// normalizeKind dereferences pointer variants so both forms are accepted.
func normalizeKind(k ObjectKind) ObjectKind {
	switch v := k.(type) {
	case *CaptureContent:
		if v != nil {
			return *v
		}
	case *BundleContent:
		if v != nil {
			return *v
		}
	case *Overlay:
		if v != nil {
			return *v
		}
	}
	return k
}

// ToInt returns the compact code of k: 0 for a capture base, 1 for a bundle,
// 2..20 for overlays in declaration order.
func ToInt(k ObjectKind) (int, error) {
	switch v := normalizeKind(k).(type) {
	case CaptureContent:
		return codeCaptureBase, nil
	case BundleContent:
		return codeOCABundle, nil
	case Overlay:
		if !v.OverlayType.Valid() {
			return 0, UnknownObjectKind(v.OverlayType.ShortName())
		}
		return codeOverlayBase + int(v.OverlayType), nil
	case nil:
		return 0, UnknownObjectKind(nil)
	default:
		return 0, UnknownObjectKind(fmt.Sprintf("%T", k))
	}
}

// FromInt is the inverse of ToInt. The returned kind carries empty content.
func FromInt(n int) (ObjectKind, error) {
	switch {
	case n == codeCaptureBase:
		return CaptureBase(CaptureContent{}), nil
	case n == codeOCABundle:
		return OCABundle(BundleContent{}), nil
	case n >= codeOverlayBase && n <= MaxObjectKindCode:
		return NewOverlay(OverlayType(n-codeOverlayBase), Content{}), nil
	default:
		return nil, UnknownObjectKind(n)
	}
}

// ObjectKindEqual reports whether a and b are the same variant with equal
// content.
func ObjectKindEqual(a, b ObjectKind) bool {
	a, b = normalizeKind(a), normalizeKind(b)
	switch av := a.(type) {
	case CaptureContent:
		bv, ok := b.(CaptureContent)
		return ok && av.Equal(bv)
	case BundleContent:
		bv, ok := b.(BundleContent)
		return ok && av.Equal(bv)
	case Overlay:
		bv, ok := b.(Overlay)
		return ok && av.Equal(bv)
	case nil:
		return b == nil
	default:
		return false
	}
}

// AsCaptureContent returns the capture content of k, if k is a capture base.
func AsCaptureContent(k ObjectKind) (CaptureContent, bool) {
	c, ok := normalizeKind(k).(CaptureContent)
	return c, ok
}

// AsBundleContent returns the bundle content of k, if k is a bundle.
func AsBundleContent(k ObjectKind) (BundleContent, bool) {
	b, ok := normalizeKind(k).(BundleContent)
	return b, ok
}

// AsOverlay returns the overlay of k, if k is an overlay.
func AsOverlay(k ObjectKind) (Overlay, bool) {
	o, ok := normalizeKind(k).(Overlay)
	return o, ok
}

// KindName renders k for messages, e.g. "CaptureBase" or
// "Overlay(spec/overlays/label/1.0)".
func KindName(k ObjectKind) string {
	switch v := normalizeKind(k).(type) {
	case Overlay:
		return fmt.Sprintf("%s(%s)", TypeOverlay, v.OverlayType)
	case nil:
		return "<nil>"
	default:
		return string(v.Type())
	}
}
