package exporter

import (
	"math"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

// Defaults mirror the editor's initial shape props.
const (
	defaultColor       = "#000000"
	defaultStrokeWidth = 4
)

func rectProps(p domain.Props) []domain.PropValue {
	top := p.Number("top", 0)
	left := p.Number("left", 0)
	width := p.Number("width", 0)
	height := p.Number("height", 0)
	return []domain.PropValue{
		domain.Vector{left + width/2, top + height/2},
		domain.Vector{width, height},
	}
}

func ellipseProps(p domain.Props) []domain.PropValue {
	return []domain.PropValue{
		domain.Vector{p.Number("cx", 0), p.Number("cy", 0)},
		domain.Vector{p.Number("rx", 0) * 2, p.Number("ry", 0) * 2},
	}
}

// bezierProps reads a flat point list laid out as
// vertex, out handle, in handle, vertex, ... with absolute coordinates and
// converts handles to vertex-relative tangents.
func bezierProps(p domain.Props) []domain.PropValue {
	var bez domain.Bezier
	points := p.Points("bezier")
	if len(points) > 0 {
		bez.Vertices = append(bez.Vertices, vec(points[0]))
		bez.InTangents = append(bez.InTangents, domain.Vector{0, 0})
		for i := 3; i < len(points); i += 3 {
			bez.Vertices = append(bez.Vertices, vec(points[i]))
			bez.OutTangents = append(bez.OutTangents, sub(points[i-2], points[i-3]))
			bez.InTangents = append(bez.InTangents, sub(points[i-1], points[i]))
		}
		bez.OutTangents = append(bez.OutTangents, domain.Vector{0, 0})
	}
	return []domain.PropValue{bez}
}

func strokeProps(p domain.Props) []domain.PropValue {
	color, opacity := splitColor(p.String("stroke", defaultColor))
	return []domain.PropValue{color, opacity, domain.Scalar(p.Number("stroke_width", defaultStrokeWidth))}
}

func fillProps(p domain.Props) []domain.PropValue {
	color, opacity := splitColor(p.String("fill", defaultColor))
	return []domain.PropValue{color, opacity}
}

// transformProps converts the editor transform (unit scale, radians) to
// percent scale and degrees.
func transformProps(p domain.Props) []domain.PropValue {
	position := p.Point("position", [2]float64{0, 0})
	anchor := p.Point("anchor", [2]float64{0, 0})
	scale := p.Point("scale", [2]float64{1, 1})
	rotation := p.Number("rotation", 0)
	return []domain.PropValue{
		vec(position),
		vec(anchor),
		domain.Vector{scale[0] * 100, scale[1] * 100},
		domain.Scalar(rotation * 180 / math.Pi),
	}
}

// splitColor returns an opaque RGBA colour and the alpha as a percentage.
func splitColor(hex string) (domain.Vector, domain.PropValue) {
	rgba := parseHexColor(hex)
	return domain.Vector{rgba[0], rgba[1], rgba[2], 1}, domain.Scalar(rgba[3] * 100)
}

func vec(p [2]float64) domain.Vector {
	return domain.Vector{p[0], p[1]}
}

func sub(a, b [2]float64) domain.Vector {
	return domain.Vector{a[0] - b[0], a[1] - b[1]}
}
