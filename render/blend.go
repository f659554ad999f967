package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ADHSoft/ro-str-viewer/effect"
)

// Blend maps a Direct3D source/destination factor pair to an ebiten blend.
//
// Ebiten blends premultiplied colors, so a source factor of src_alpha
// becomes one: the alpha multiply has already happened. src_alpha_sat has
// no ebiten counterpart and is treated the same way.
func Blend(src, dst effect.BlendMode) ebiten.Blend {
	s := factor(src)
	if src == effect.BlendSrcAlpha || src == effect.BlendSrcAlphaSat {
		s = ebiten.BlendFactorOne
	}
	d := factor(dst)
	return ebiten.Blend{
		BlendFactorSourceRGB:        s,
		BlendFactorSourceAlpha:      s,
		BlendFactorDestinationRGB:   d,
		BlendFactorDestinationAlpha: d,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
}

func factor(b effect.BlendMode) ebiten.BlendFactor {
	switch b {
	case effect.BlendZero:
		return ebiten.BlendFactorZero
	case effect.BlendOne:
		return ebiten.BlendFactorOne
	case effect.BlendSrcColor:
		return ebiten.BlendFactorSourceColor
	case effect.BlendInvSrcColor:
		return ebiten.BlendFactorOneMinusSourceColor
	case effect.BlendSrcAlpha, effect.BlendSrcAlphaSat:
		return ebiten.BlendFactorSourceAlpha
	case effect.BlendInvSrcAlpha:
		return ebiten.BlendFactorOneMinusSourceAlpha
	case effect.BlendDestAlpha:
		return ebiten.BlendFactorDestinationAlpha
	case effect.BlendInvDestAlpha:
		return ebiten.BlendFactorOneMinusDestinationAlpha
	case effect.BlendDestColor:
		return ebiten.BlendFactorDestinationColor
	case effect.BlendInvDestColor:
		return ebiten.BlendFactorOneMinusDestinationColor
	default:
		return ebiten.BlendFactorOne
	}
}
