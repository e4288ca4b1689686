package services

import (
	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// Outcome reports what an edit command did to a document.
type Outcome struct {
	// Applied is true when the document changed.
	Applied bool

	// Conflicts holds the alive shapes that rejected a shape.edit batch.
	// When non-empty nothing was applied.
	Conflicts []*domain.Shape
}

// Editor applies edit commands. Commands that reference missing shapes are
// ignored rather than reported, so a client racing a peer's delete never
// sees an error.
type Editor struct{}

// NewEditor creates an editor.
func NewEditor() *Editor {
	return &Editor{}
}

// Apply runs cmd against doc and invalidates the export cache if anything
// changed.
func (e *Editor) Apply(doc *domain.Document, cmd domain.Command) Outcome {
	var out Outcome

	switch c := cmd.(type) {
	case domain.AddShape:
		out.Applied = e.addShape(doc, c)
	case domain.DeleteShape:
		out.Applied = e.deleteShape(doc, c)
	case domain.EditShapes:
		out = e.editShapes(doc, c)
	case domain.ReparentShape:
		out.Applied = e.reparentShape(doc, c)
	case domain.SetKeyframe:
		out.Applied = e.setKeyframe(doc, c)
	case domain.DeleteKeyframe:
		out.Applied = e.deleteKeyframe(doc, c)
	default:
		logger.Debug("ignoring unsupported command %T", cmd)
	}

	if out.Applied {
		doc.InvalidateExport()
	}
	return out
}

func (e *Editor) addShape(doc *domain.Document, c domain.AddShape) bool {
	if s, ok := doc.Shape(c.ID); ok {
		s.Undelete()
		return true
	}
	if !c.Shape.Valid() {
		logger.Debug("shape.add %s: unknown kind %q", c.ID, c.Shape)
		return false
	}
	return doc.AddShape(domain.NewShape(c.ID, c.Shape, c.Props.Clone()))
}

func (e *Editor) deleteShape(doc *domain.Document, c domain.DeleteShape) bool {
	s, ok := doc.Shape(c.ID)
	if !ok {
		logger.Debug("shape.delete: no shape %s", c.ID)
		return false
	}
	s.Delete()
	return true
}

// editShapes is all or nothing: one stale alive target rejects the batch.
// Tombstoned targets never conflict, but they are still only updated by a
// newer timestamp so LastModified cannot go backwards.
func (e *Editor) editShapes(doc *domain.Document, c domain.EditShapes) Outcome {
	targets := make([]*domain.Shape, 0, len(c.IDs))
	for _, id := range c.IDs {
		s, ok := doc.Shape(id)
		if !ok {
			logger.Debug("shape.edit: no shape %s", id)
			continue
		}
		targets = append(targets, s)
	}

	var conflicts []*domain.Shape
	for _, s := range targets {
		if s.Alive() && c.Timestamp <= s.LastModified {
			conflicts = append(conflicts, s)
		}
	}
	if len(conflicts) > 0 {
		return Outcome{Conflicts: conflicts}
	}

	applied := false
	for _, s := range targets {
		if s.Update(c.Timestamp, c.Props) {
			applied = true
		}
	}
	return Outcome{Applied: applied}
}

func (e *Editor) reparentShape(doc *domain.Document, c domain.ReparentShape) bool {
	child, ok := doc.Shape(c.Child)
	if !ok {
		logger.Debug("shape.parent: no shape %s", c.Child)
		return false
	}

	var parent *domain.Shape
	if c.Parent != nil {
		parent, ok = doc.Shape(*c.Parent)
		if !ok {
			logger.Debug("shape.parent: no parent %s", *c.Parent)
			return false
		}
	}

	if !child.SetParent(parent) {
		logger.Debug("shape.parent: %s under %s would form a cycle", c.Child, *c.Parent)
		return false
	}
	return true
}

func (e *Editor) setKeyframe(doc *domain.Document, c domain.SetKeyframe) bool {
	s, ok := doc.Shape(c.ID)
	if !ok {
		logger.Debug("keyframe.add: no shape %s", c.ID)
		return false
	}
	s.SetKeyframe(c.Time, c.Props.Clone())
	return true
}

func (e *Editor) deleteKeyframe(doc *domain.Document, c domain.DeleteKeyframe) bool {
	s, ok := doc.Shape(c.ID)
	if !ok {
		logger.Debug("keyframe.delete: no shape %s", c.ID)
		return false
	}
	return s.RemoveKeyframe(c.Time)
}
