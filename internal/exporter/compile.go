package exporter

import (
	"github.com/custodia-labs/glaximini/internal/core/domain"
)

// Cached returns the document's compiled export, compiling it first if an
// edit invalidated the cache. The caller must hold the document lock.
func Cached(doc *domain.Document) *domain.Animation {
	if anim := doc.CachedExport(); anim != nil {
		return anim
	}
	anim := Compile(doc)
	doc.SetCachedExport(anim)
	return anim
}

// Compile builds a fresh animation tree without touching the cache.
func Compile(doc *domain.Document) *domain.Animation {
	anim := &domain.Animation{Timeline: doc.Timeline}

	// Later shapes are drawn on top, so they come first.
	shapes := doc.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		s := shapes[i]
		if s.Alive() && s.Parent() == nil {
			anim.Groups = append(anim.Groups, compileShape(s, doc.Timeline.Start))
		}
	}
	return anim
}

func compileShape(s *domain.Shape, start float64) *domain.Group {
	group := &domain.Group{Name: s.ID}

	switch s.Kind {
	case domain.KindGroup:
		children := s.Children()
		for i := len(children) - 1; i >= 0; i-- {
			if children[i].Alive() {
				group.Elements = append(group.Elements, compileShape(children[i], start))
			}
		}
		v := animate(s, start, transformProps)
		group.Elements = append(group.Elements, &domain.Transform{
			Position: v[0], Anchor: v[1], Scale: v[2], Rotation: v[3],
		})

	case domain.KindRectangle:
		v := animate(s, start, rectProps)
		group.Elements = append(group.Elements, &domain.Rect{Position: v[0], Size: v[1]})
		group.Elements = append(group.Elements, paint(s, start)...)

	case domain.KindEllipse:
		v := animate(s, start, ellipseProps)
		group.Elements = append(group.Elements, &domain.Ellipse{Position: v[0], Size: v[1]})
		group.Elements = append(group.Elements, paint(s, start)...)

	case domain.KindBezier:
		v := animate(s, start, bezierProps)
		group.Elements = append(group.Elements, &domain.Path{Shape: v[0]})
		group.Elements = append(group.Elements, paint(s, start)...)
	}

	return group
}

// paint returns the stroke and fill elements of a primitive.
func paint(s *domain.Shape, start float64) []domain.Element {
	st := animate(s, start, strokeProps)
	fl := animate(s, start, fillProps)
	return []domain.Element{
		&domain.Stroke{Color: st[0], Opacity: st[1], Width: st[2]},
		&domain.Fill{Color: fl[0], Opacity: fl[1]},
	}
}

// converter maps a property bag onto a fixed list of output values.
type converter func(props domain.Props) []domain.PropValue

// animate runs conv over the shape's base props, or over every keyframe.
// When the first keyframe lies after the start frame, a hold keyframe with
// the base values is placed at the start so the shape keeps its base state
// until the track begins.
func animate(s *domain.Shape, start float64, conv converter) []domain.Value {
	base := conv(s.Props)
	out := make([]domain.Value, len(base))

	keyframes := s.SortedKeyframes()
	if len(keyframes) == 0 {
		for i, v := range base {
			out[i] = domain.StaticValue(v)
		}
		return out
	}

	if keyframes[0].Time > start {
		for i, v := range base {
			out[i].Keyframes = append(out[i].Keyframes, domain.ValueKeyframe{Time: start, Value: v, Hold: true})
		}
	}

	for _, kf := range keyframes {
		values := conv(s.Props.Merged(kf.Props))
		for i, v := range values {
			out[i].Keyframes = append(out[i].Keyframes, domain.ValueKeyframe{Time: kf.Time, Value: v})
		}
	}
	return out
}
