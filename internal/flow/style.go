package flow

import "github.com/atinyakov/FlowDoc/internal/models"

// Supported node shapes.
const (
	ShapeDefault       = "default"
	ShapeRounded       = "rounded"
	ShapeDiamond       = "diamond"
	ShapeCircle        = "circle"
	ShapeParallelogram = "parallelogram"
)

// DefaultColor is the node color used when none is given.
const DefaultColor = "#667eea"

// Shapes lists every shape DeriveStyle understands.
var Shapes = []string{ShapeDefault, ShapeRounded, ShapeDiamond, ShapeCircle, ShapeParallelogram}

// DeriveStyle maps a shape and color to the node's visual attributes.
// Unknown shapes render as ShapeDefault.
func DeriveStyle(shape, color string) models.NodeStyle {
	if color == "" {
		color = DefaultColor
	}
	style := models.NodeStyle{
		Background: color,
		Color:      "white",
		Border:     "none",
	}
	switch shape {
	case ShapeRounded:
		style.BorderRadius = "20px"
	case ShapeDiamond:
		style.BorderRadius = "4px"
		style.Transform = "rotate(45deg)"
	case ShapeCircle:
		style.BorderRadius = "50%"
		style.Width = "100px"
		style.Height = "100px"
	case ShapeParallelogram:
		style.BorderRadius = "4px"
		style.Transform = "skewX(-20deg)"
	default:
		style.BorderRadius = "6px"
	}
	return style
}

// ValidShape reports whether shape is one of Shapes.
func ValidShape(shape string) bool {
	for _, s := range Shapes {
		if s == shape {
			return true
		}
	}
	return false
}
