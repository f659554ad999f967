package raster

import (
	"math"

	"github.com/ADHSoft/ro-str-viewer/common"
	"github.com/ADHSoft/ro-str-viewer/effect"
)

// rgba is a straight (non-premultiplied) color with channels in 0..1.
type rgba [4]float64

// factor returns the per-channel weight a Direct3D blend factor applies,
// given the incoming source and the destination already in the frame.
func factor(b effect.BlendMode, src, dst rgba) rgba {
	switch b {
	case effect.BlendZero:
		return rgba{}
	case effect.BlendOne:
		return rgba{1, 1, 1, 1}
	case effect.BlendSrcColor:
		return src
	case effect.BlendInvSrcColor:
		return rgba{1 - src[0], 1 - src[1], 1 - src[2], 1 - src[3]}
	case effect.BlendSrcAlpha:
		return rgba{src[3], src[3], src[3], src[3]}
	case effect.BlendInvSrcAlpha:
		a := 1 - src[3]
		return rgba{a, a, a, a}
	case effect.BlendDestAlpha:
		return rgba{dst[3], dst[3], dst[3], dst[3]}
	case effect.BlendInvDestAlpha:
		a := 1 - dst[3]
		return rgba{a, a, a, a}
	case effect.BlendDestColor:
		return dst
	case effect.BlendInvDestColor:
		return rgba{1 - dst[0], 1 - dst[1], 1 - dst[2], 1 - dst[3]}
	case effect.BlendSrcAlphaSat:
		f := math.Min(src[3], 1-dst[3])
		return rgba{f, f, f, 1}
	default:
		return rgba{1, 1, 1, 1}
	}
}

// blendPixel computes src*Fs + dst*Fd for one pixel, clamped to 0..1.
func blendPixel(src, dst rgba, sf, df effect.BlendMode) rgba {
	fs := factor(sf, src, dst)
	fd := factor(df, src, dst)
	var out rgba
	for i := range out {
		out[i] = common.Clamp01(src[i]*fs[i] + dst[i]*fd[i])
	}
	return out
}
