package domain

import (
	"encoding/json"
	"fmt"
)

// CommandKind is the wire name of an edit command.
type CommandKind string

const (
	CmdShapeAdd       CommandKind = "shape.add"
	CmdShapeDelete    CommandKind = "shape.delete"
	CmdShapeEdit      CommandKind = "shape.edit"
	CmdShapeParent    CommandKind = "shape.parent"
	CmdKeyframeAdd    CommandKind = "keyframe.add"
	CmdKeyframeDelete CommandKind = "keyframe.delete"
)

// Command is one of the six edit commands. The set is closed: only the types
// in this file implement it.
type Command interface {
	Kind() CommandKind
	isCommand()
}

// AddShape creates a shape, or revives a tombstoned one with the same id.
type AddShape struct {
	ID    string    `json:"id"`
	Shape ShapeKind `json:"shape"`
	Props Props     `json:"props"`
}

// DeleteShape tombstones a shape and its subtree.
type DeleteShape struct {
	ID string `json:"id"`
}

// EditShapes merges Props into every shape in IDs, all or nothing.
type EditShapes struct {
	IDs       []string `json:"ids"`
	Timestamp float64  `json:"timestamp"`
	Props     Props    `json:"props"`
}

// ReparentShape moves Child under Parent; a nil Parent makes it a root.
type ReparentShape struct {
	Child  string  `json:"child"`
	Parent *string `json:"parent"`
}

// SetKeyframe upserts the keyframe at Time on shape ID.
type SetKeyframe struct {
	ID    string  `json:"id"`
	Time  float64 `json:"time"`
	Props Props   `json:"props"`
}

// DeleteKeyframe removes the keyframe at Time on shape ID.
type DeleteKeyframe struct {
	ID   string  `json:"id"`
	Time float64 `json:"time"`
}

func (AddShape) Kind() CommandKind       { return CmdShapeAdd }
func (DeleteShape) Kind() CommandKind    { return CmdShapeDelete }
func (EditShapes) Kind() CommandKind     { return CmdShapeEdit }
func (ReparentShape) Kind() CommandKind  { return CmdShapeParent }
func (SetKeyframe) Kind() CommandKind    { return CmdKeyframeAdd }
func (DeleteKeyframe) Kind() CommandKind { return CmdKeyframeDelete }

func (AddShape) isCommand()       {}
func (DeleteShape) isCommand()    {}
func (EditShapes) isCommand()     {}
func (ReparentShape) isCommand()  {}
func (SetKeyframe) isCommand()    {}
func (DeleteKeyframe) isCommand() {}

// ParseCommand decodes the data object of a document.edit message.
// Unknown kinds return ErrUnknownCommand, undecodable data ErrInvalidInput.
func ParseCommand(kind string, data json.RawMessage) (Command, error) {
	var cmd Command
	switch CommandKind(kind) {
	case CmdShapeAdd:
		cmd = &AddShape{}
	case CmdShapeDelete:
		cmd = &DeleteShape{}
	case CmdShapeEdit:
		cmd = &EditShapes{}
	case CmdShapeParent:
		cmd = &ReparentShape{}
	case CmdKeyframeAdd:
		cmd = &SetKeyframe{}
	case CmdKeyframeDelete:
		cmd = &DeleteKeyframe{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, kind)
	}

	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("%w: %s data: %v", ErrInvalidInput, kind, err)
	}

	return deref(cmd), nil
}

// deref turns the decoding target back into a value command.
func deref(cmd Command) Command {
	switch c := cmd.(type) {
	case *AddShape:
		return *c
	case *DeleteShape:
		return *c
	case *EditShapes:
		return *c
	case *ReparentShape:
		return *c
	case *SetKeyframe:
		return *c
	case *DeleteKeyframe:
		return *c
	default:
		return cmd
	}
}
