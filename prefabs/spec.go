package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ADHSoft/ro-str-viewer/effect"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadEffect reads and converts a named effect description.
func LoadEffect(name string) (*effect.Effect, error) {
	spec, err := LoadSpec[EffectSpec](name)
	if err != nil {
		return nil, err
	}
	e, err := spec.ToEffect()
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	if e.Name == "" {
		e.Name = strings.TrimSuffix(name, ".yaml")
	}
	return e, nil
}

type EffectSpec struct {
	Name       string      `yaml:"name"`
	FPS        int         `yaml:"fps"`
	FrameCount int         `yaml:"frame_count"`
	Layers     []LayerSpec `yaml:"layers"`
}

type LayerSpec struct {
	Name      string         `yaml:"name"`
	Textures  []string       `yaml:"textures"`
	Keyframes []KeyFrameSpec `yaml:"keyframes"`
}

// KeyFrameSpec mirrors effect.KeyFrame. Enumerations accept either their name
// or the number stored in STR files. Color, uv and blends are optional; a
// base keyframe without them is opaque white, maps the whole texture and
// alpha blends. Morph keyframes default to zero deltas.
type KeyFrameSpec struct {
	Frame      int         `yaml:"frame"`
	Kind       EnumSpec    `yaml:"kind"`
	Color      []float64   `yaml:"color"`
	Position   []float64   `yaml:"position"`
	Rotation   float64     `yaml:"rotation"`
	Quad       [][]float64 `yaml:"quad"`
	UV         [][]float64 `yaml:"uv"`
	TextureID  float64     `yaml:"texture_id"`
	AtlasDelta float64     `yaml:"atlas_delta"`
	Animation  EnumSpec    `yaml:"animation"`
	SrcBlend   EnumSpec    `yaml:"src_blend"`
	DstBlend   EnumSpec    `yaml:"dst_blend"`
}

// EnumSpec holds a scalar that is either a name or an integer.
type EnumSpec struct {
	Name  string
	Value int
	IsInt bool
	Set   bool
}

func (e *EnumSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a name or a number", value.Line)
	}
	e.Set = true
	if n, err := strconv.Atoi(value.Value); err == nil {
		e.Value = n
		e.IsInt = true
		return nil
	}
	e.Name = strings.ToLower(strings.TrimSpace(value.Value))
	return nil
}

func (e EnumSpec) String() string {
	if e.IsInt {
		return strconv.Itoa(e.Value)
	}
	return e.Name
}

// FullUV maps the whole texture onto a quad.
var FullUV = effect.Quad{
	A: effect.Vec2{X: 0, Y: 0},
	B: effect.Vec2{X: 1, Y: 0},
	C: effect.Vec2{X: 1, Y: 1},
	D: effect.Vec2{X: 0, Y: 1},
}

func (s *EffectSpec) ToEffect() (*effect.Effect, error) {
	e := &effect.Effect{
		Name:       s.Name,
		FPS:        s.FPS,
		FrameCount: s.FrameCount,
		Layers:     make([]effect.Layer, 0, len(s.Layers)),
	}
	for i, ls := range s.Layers {
		l := effect.Layer{
			Name:      ls.Name,
			Textures:  append([]string(nil), ls.Textures...),
			Keyframes: make([]effect.KeyFrame, 0, len(ls.Keyframes)),
		}
		if l.Name == "" {
			l.Name = fmt.Sprintf("layer%d", i)
		}
		for j, ks := range ls.Keyframes {
			k, err := ks.toKeyFrame()
			if err != nil {
				return nil, fmt.Errorf("layer %d keyframe %d: %w", i, j, err)
			}
			l.Keyframes = append(l.Keyframes, k)
		}
		e.Layers = append(e.Layers, l)
	}
	return e, nil
}

func (s *KeyFrameSpec) toKeyFrame() (effect.KeyFrame, error) {
	k := effect.KeyFrame{
		Frame:      s.Frame,
		Rotation:   s.Rotation,
		TextureID:  s.TextureID,
		AtlasDelta: s.AtlasDelta,
	}

	kind, err := parseKind(s.Kind)
	if err != nil {
		return k, err
	}
	k.Kind = kind
	base := kind == effect.KindBase

	if k.Animation, err = parseAnimation(s.Animation); err != nil {
		return k, err
	}
	if k.SrcBlend, err = parseBlend(s.SrcBlend, effect.BlendSrcAlpha); err != nil {
		return k, fmt.Errorf("src_blend: %w", err)
	}
	if k.DstBlend, err = parseBlend(s.DstBlend, effect.BlendInvSrcAlpha); err != nil {
		return k, fmt.Errorf("dst_blend: %w", err)
	}

	switch {
	case len(s.Color) == 4:
		k.Color = effect.Color{R: s.Color[0], G: s.Color[1], B: s.Color[2], A: s.Color[3]}
	case len(s.Color) == 0 && base:
		k.Color = effect.White
	case len(s.Color) != 0:
		return k, fmt.Errorf("color needs 4 components, got %d", len(s.Color))
	}

	if len(s.Position) != 0 {
		if len(s.Position) != 2 {
			return k, fmt.Errorf("position needs 2 components, got %d", len(s.Position))
		}
		k.Position = effect.Vec2{X: s.Position[0], Y: s.Position[1]}
	}

	if k.Quad, err = parseQuad("quad", s.Quad, effect.Quad{}); err != nil {
		return k, err
	}
	uvDefault := effect.Quad{}
	if base {
		uvDefault = FullUV
	}
	if k.UV, err = parseQuad("uv", s.UV, uvDefault); err != nil {
		return k, err
	}
	return k, nil
}

func parseQuad(field string, pts [][]float64, def effect.Quad) (effect.Quad, error) {
	if len(pts) == 0 {
		return def, nil
	}
	if len(pts) != 4 {
		return effect.Quad{}, fmt.Errorf("%s needs 4 points, got %d", field, len(pts))
	}
	var c [4]effect.Vec2
	for i, p := range pts {
		if len(p) != 2 {
			return effect.Quad{}, fmt.Errorf("%s point %d needs 2 components, got %d", field, i, len(p))
		}
		c[i] = effect.Vec2{X: p[0], Y: p[1]}
	}
	return effect.Quad{A: c[0], B: c[1], C: c[2], D: c[3]}, nil
}

// parseKind passes unknown numbers through; playback rejects them per layer.
func parseKind(e EnumSpec) (effect.KeyframeKind, error) {
	if !e.Set {
		return effect.KindBase, nil
	}
	if e.IsInt {
		return effect.KeyframeKind(e.Value), nil
	}
	switch e.Name {
	case "base":
		return effect.KindBase, nil
	case "morph":
		return effect.KindMorph, nil
	}
	return 0, fmt.Errorf("unknown keyframe kind %q", e.Name)
}

func parseAnimation(e EnumSpec) (effect.AnimationType, error) {
	if !e.Set {
		return effect.NoChange, nil
	}
	if e.IsInt {
		return effect.AnimationType(e.Value), nil
	}
	switch e.Name {
	case "none", "":
		return effect.NoChange, nil
	case "linear":
		return effect.Linear, nil
	case "clamped":
		return effect.Clamped, nil
	}
	return 0, fmt.Errorf("unknown animation type %q", e.Name)
}

func parseBlend(e EnumSpec, def effect.BlendMode) (effect.BlendMode, error) {
	if !e.Set {
		return def, nil
	}
	if e.IsInt {
		return effect.BlendMode(e.Value), nil
	}
	b, ok := effect.ParseBlendMode(e.Name)
	if !ok {
		return 0, fmt.Errorf("unknown blend factor %q", e.Name)
	}
	return b, nil
}

// YAMLColor reads "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	v, err := ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = v
	return nil
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa". Alpha defaults to opaque.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", s)
	}
	var ch [4]uint8
	ch[3] = 0xff
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color format: %s", s)
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
