package display

import (
	"github.com/Vibe-Marketer/devping/internal/config"
)

// Placement describes where a panel sits on screen: which edges it
// anchors to and the margin from each anchored edge.
type Placement struct {
	AnchorTop    bool
	AnchorBottom bool
	AnchorLeft   bool
	AnchorRight  bool

	MarginX int // from the anchored horizontal edge
	MarginY int // from the anchored vertical edge
}

// CalculatePlacement returns the placement for a panel in the given
// slot. Slot 0 sits at the configured offset; each further slot moves
// one panel height plus gap along the stacking axis, away from the
// anchored edge.
func CalculatePlacement(display config.DisplayConfig, slot int) Placement {
	if slot < 0 {
		slot = 0
	}

	p := Placement{
		MarginX: display.OffsetX,
		MarginY: display.OffsetY + slot*(display.Height+display.Gap),
	}

	switch config.Position(display.Position) {
	case config.PositionTopLeft:
		p.AnchorTop = true
		p.AnchorLeft = true
	case config.PositionBottomLeft:
		p.AnchorBottom = true
		p.AnchorLeft = true
	case config.PositionBottomRight:
		p.AnchorBottom = true
		p.AnchorRight = true
	default: // top-right
		p.AnchorTop = true
		p.AnchorRight = true
	}

	return p
}
