package models

// Alignment is a text clip's horizontal alignment.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// TextStyle carries the presentation attributes of a text clip. The engine
// never interprets these; it only round-trips them through commits.
type TextStyle struct {
	Font      string    `json:"font,omitempty"`
	Color     string    `json:"color,omitempty"`
	Align     Alignment `json:"align,omitempty"`
	SizeRatio float64   `json:"sizeRatio,omitempty"`
}

// Effect names a text animation preset.
type Effect string

// Animation presets available to text clips.
const (
	EffectNone           Effect = ""
	EffectFadeIn         Effect = "fade-in"
	EffectFadeOut        Effect = "fade-out"
	EffectSlideLeft      Effect = "slide-left"
	EffectSlideRight     Effect = "slide-right"
	EffectSlideUp        Effect = "slide-up"
	EffectSlideDown      Effect = "slide-down"
	EffectZoomIn         Effect = "zoom-in"
	EffectZoomOut        Effect = "zoom-out"
	EffectBounce         Effect = "bounce"
	EffectShake          Effect = "shake"
	EffectPulse          Effect = "pulse"
	EffectWave           Effect = "wave"
	EffectTypewriter     Effect = "typewriter"
	EffectBlink          Effect = "blink"
	EffectGlow           Effect = "glow"
	EffectRainbow        Effect = "rainbow"
	EffectSpin           Effect = "spin"
	EffectFlipX          Effect = "flip-x"
	EffectFlipY          Effect = "flip-y"
	EffectPop            Effect = "pop"
	EffectDrop           Effect = "drop"
	EffectRise           Effect = "rise"
	EffectStretch        Effect = "stretch"
	EffectJitter         Effect = "jitter"
	EffectNeon           Effect = "neon"
	EffectShadowPulse    Effect = "shadow-pulse"
	EffectLetterSpacing  Effect = "letter-spacing"
)

// Effects lists every preset, including the zero preset.
var Effects = []Effect{
	EffectNone, EffectFadeIn, EffectFadeOut, EffectSlideLeft, EffectSlideRight,
	EffectSlideUp, EffectSlideDown, EffectZoomIn, EffectZoomOut, EffectBounce,
	EffectShake, EffectPulse, EffectWave, EffectTypewriter, EffectBlink,
	EffectGlow, EffectRainbow, EffectSpin, EffectFlipX, EffectFlipY,
	EffectPop, EffectDrop, EffectRise, EffectStretch, EffectJitter,
	EffectNeon, EffectShadowPulse, EffectLetterSpacing,
}

// ValidEffect reports whether e names a known preset.
func ValidEffect(e Effect) bool {
	for _, known := range Effects {
		if e == known {
			return true
		}
	}
	return false
}
