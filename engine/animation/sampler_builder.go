package animation

// SamplerBuilderOption is a functional option for configuring a Sampler.
type SamplerBuilderOption func(s *samplerImpl)

// WithInPlace makes SampleFor reset root bone translations to their rest offsets so the
// animation plays on the spot instead of travelling through the scene.
//
// Parameters:
//   - inPlace: true to keep the animation in place
//
// Returns:
//   - SamplerBuilderOption: option function to apply
func WithInPlace(inPlace bool) SamplerBuilderOption {
	return func(s *samplerImpl) {
		s.inPlace = inPlace
	}
}
