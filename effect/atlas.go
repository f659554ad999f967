package effect

import (
	"math"

	"github.com/ADHSoft/ro-str-viewer/common"
)

// AtlasStepScale is how many atlas slots one unit of AtlasDelta advances
// per elapsed frame.
const AtlasStepScale = 2

// ResolveAtlasIndex picks the texture slot a base keyframe shows at frame
// target. The result is always in [0, atlasSize).
func ResolveAtlasIndex(base KeyFrame, target, atlasSize int) (int, error) {
	if atlasSize <= 0 {
		return 0, configErr(-1, "atlas size %d", atlasSize)
	}

	id := math.Abs(base.TextureID)
	if base.Animation != NoChange {
		id += base.AtlasDelta * AtlasStepScale * float64(target-base.Frame)
	}

	if math.IsNaN(id) {
		return 0, nil
	}
	id = math.Floor(id)
	if base.Animation == Clamped && id > float64(atlasSize-1) {
		return atlasSize - 1, nil
	}
	return int(common.FloorModf(id, float64(atlasSize))), nil
}
