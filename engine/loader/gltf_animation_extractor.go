package loader

import (
	"fmt"

	"github.com/handsonicv4/Chocolate-3D/engine/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	doc *gltf.Document
}

// gltfAnimationExtractor summarizes the animations bundled with a glTF document.
// Keyframes are not decoded; only the clip inventory is recorded on the model.
type gltfAnimationExtractor interface {
	// ExtractAnimation summarizes a single animation by index.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//
	// Returns:
	//   - model.AnimationClip: the clip name, duration in seconds and node channel count
	//   - error: error if the index is out of range
	ExtractAnimation(animIndex int) (model.AnimationClip, error)

	// ExtractAllAnimations summarizes every animation in index order.
	ExtractAllAnimations() []model.AnimationClip
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

func newGLTFAnimationExtractor(doc *gltf.Document) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{doc: doc}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int) (model.AnimationClip, error) {
	if animIndex < 0 || animIndex >= len(e.doc.Animations) {
		return model.AnimationClip{}, fmt.Errorf("animation index %d out of range", animIndex)
	}
	anim := e.doc.Animations[animIndex]

	clip := model.AnimationClip{Name: anim.Name}
	if clip.Name == "" {
		clip.Name = fmt.Sprintf("animation_%d", animIndex)
	}

	// Morph target channels have no target node.
	for _, ch := range anim.Channels {
		if ch.Target.Node != nil {
			clip.Channels++
		}
	}
	for _, s := range anim.Samplers {
		if d := e.inputEnd(s.Input); d > clip.Duration {
			clip.Duration = d
		}
	}
	return clip, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations() []model.AnimationClip {
	clips := make([]model.AnimationClip, 0, len(e.doc.Animations))
	for i := range e.doc.Animations {
		if clip, err := e.ExtractAnimation(i); err == nil {
			clips = append(clips, clip)
		}
	}
	return clips
}

// inputEnd returns the last keyframe time of a sampler input accessor.
// The accessor max bound is preferred; otherwise the timestamps are read.
func (e *gltfAnimationExtractorImpl) inputEnd(accessor int) float32 {
	if accessor < 0 || accessor >= len(e.doc.Accessors) {
		return 0
	}
	acr := e.doc.Accessors[accessor]
	if len(acr.Max) > 0 {
		return float32(acr.Max[0])
	}
	data, err := modeler.ReadAccessor(e.doc, acr, nil)
	if err != nil {
		return 0
	}
	times, ok := data.([]float32)
	if !ok || len(times) == 0 {
		return 0
	}
	return times[len(times)-1]
}
