package gesture

import (
	"fmt"
	"image"

	"github.com/ayusman/aircanvas/internal/landmark"
)

// Kind is the single command chosen for a frame.
type Kind int

const (
	KindNone Kind = iota
	KindDraw
	KindErase
	KindColorCycle
	KindClear
)

var kindNames = map[Kind]string{
	KindNone:       "none",
	KindDraw:       "draw",
	KindErase:      "erase",
	KindColorCycle: "color_cycle",
	KindClear:      "clear",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// CyclePolicy controls how a held color-cycle pose advances the palette.
type CyclePolicy string

const (
	// CycleHold advances on every qualifying frame.
	CycleHold CyclePolicy = "hold"
	// CycleEdge advances once when the pose is entered.
	CycleEdge CyclePolicy = "edge"
)

// ParseCyclePolicy validates a policy name.
func ParseCyclePolicy(s string) (CyclePolicy, error) {
	switch CyclePolicy(s) {
	case CycleHold, CycleEdge:
		return CyclePolicy(s), nil
	default:
		return "", fmt.Errorf("unknown color cycle policy %q", s)
	}
}

// Event is the outcome of arbitrating one frame.
type Event struct {
	Kind Kind
	// Point is the index fingertip in pixels, set for KindDraw and KindErase.
	Point image.Point
	// Color is the selected color for KindColorCycle.
	Color NamedColor
	// Advanced is true when the palette moved this frame.
	Advanced bool
}

// Arbiter resolves simultaneously matching poses into one Event using the
// fixed precedence clear > color-cycle > eraser > draw > none.
type Arbiter struct {
	classifier *Classifier
	policy     CyclePolicy
	cycleHeld  bool
}

// NewArbiter creates an Arbiter around classifier. An empty policy means CycleEdge.
func NewArbiter(classifier *Classifier, policy CyclePolicy) *Arbiter {
	if policy == "" {
		policy = CycleEdge
	}
	return &Arbiter{classifier: classifier, policy: policy}
}

// Classifier returns the wrapped classifier.
func (a *Arbiter) Classifier() *Classifier {
	return a.classifier
}

// Policy returns the color-cycle policy.
func (a *Arbiter) Policy() CyclePolicy {
	return a.policy
}

// Decide classifies set (nil when no hand is visible) for a height x width
// frame. Lower-priority predicates are not evaluated once one matched, so
// the palette only moves when color-cycle is the winning gesture.
func (a *Arbiter) Decide(set *landmark.Set, height, width int) Event {
	if set == nil {
		a.cycleHeld = false
		return Event{Kind: KindNone}
	}

	if a.classifier.IsClearCanvasGesture(set) {
		a.cycleHeld = false
		return Event{Kind: KindClear}
	}

	if IsColorCycle(set) {
		if a.policy == CycleEdge && a.cycleHeld {
			return Event{Kind: KindColorCycle, Color: a.classifier.Palette().Current()}
		}
		a.cycleHeld = true
		c, _ := a.classifier.ColorCycleTrigger(set)
		return Event{Kind: KindColorCycle, Color: c, Advanced: true}
	}
	a.cycleHeld = false

	if a.classifier.IsEraserGesture(set) {
		return Event{Kind: KindErase, Point: Fingertip(set, height, width)}
	}

	if a.classifier.IsDrawingGesture(set) {
		return Event{Kind: KindDraw, Point: Fingertip(set, height, width)}
	}

	return Event{Kind: KindNone}
}

// Reset re-arms edge detection, for example after a session restart.
func (a *Arbiter) Reset() {
	a.cycleHeld = false
}
