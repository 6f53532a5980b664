// Package carrier maps energy carriers to their diagram colors.
//
// Every flow edge and component shape is stroked in the color of the energy
// carrier it belongs to (electricity, heat, hydrogen, ...), so diagrams stay
// readable without a legend. Unknown carriers get a loud magenta fallback to
// make missing palette entries obvious instead of silently blending in.
package carrier

// Fallback is the color used for carriers without a palette entry.
const Fallback = "#ff00ff"

// palette holds the built-in carrier colors. Aliases (h2, ch4) are resolved
// in Color rather than duplicated here.
var palette = map[string]string{
	"electricity": "#4c00ff",
	"heat":        "#7a1800",
	"hydrogen":    "#00a2ff",
	"co2":         "#666666",
	"gas":         "#3a2f00",
}

// aliases maps alternative carrier spellings to their canonical name.
var aliases = map[string]string{
	"h2":  "hydrogen",
	"ch4": "gas",
}

// Color returns the diagram color for a carrier, resolving aliases.
// Unknown carriers return Fallback.
func Color(name string) string {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	if c, ok := palette[name]; ok {
		return c
	}
	return Fallback
}

// Palette is a carrier color table with custom overrides layered on top of
// the built-in colors. The zero value uses the built-ins only.
type Palette struct {
	overrides map[string]string
}

// NewPalette creates a palette with the given overrides. Override keys are
// matched before alias resolution, so an override for "h2" wins over the
// built-in hydrogen color.
func NewPalette(overrides map[string]string) Palette {
	return Palette{overrides: overrides}
}

// Color returns the color for a carrier, preferring overrides.
func (p Palette) Color(name string) string {
	if c, ok := p.overrides[name]; ok {
		return c
	}
	return Color(name)
}
