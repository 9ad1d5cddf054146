package animation

// ChannelKind identifies which transform component a motion channel drives.
type ChannelKind int

const (
	// TranslateX drives translation along the bone's local X axis.
	TranslateX ChannelKind = iota

	// TranslateY drives translation along the bone's local Y axis.
	TranslateY

	// TranslateZ drives translation along the bone's local Z axis.
	TranslateZ

	// RotateX drives rotation about the bone's local X axis.
	RotateX

	// RotateY drives rotation about the bone's local Y axis.
	RotateY

	// RotateZ drives rotation about the bone's local Z axis.
	RotateZ
)

// String returns the motion-capture keyword for the channel kind.
func (k ChannelKind) String() string {
	switch k {
	case TranslateX:
		return "Xposition"
	case TranslateY:
		return "Yposition"
	case TranslateZ:
		return "Zposition"
	case RotateX:
		return "Xrotation"
	case RotateY:
		return "Yrotation"
	case RotateZ:
		return "Zrotation"
	}
	return "unknown"
}

// IsRotation reports whether the channel drives a rotation.
func (k ChannelKind) IsRotation() bool {
	return k == RotateX || k == RotateY || k == RotateZ
}

// Channel binds one scalar of a per-frame motion record to a bone transform component.
// Channels are kept in declaration order, which is also the order of values in each frame.
type Channel struct {
	// BoneIndex is the index of the animated bone in the skeleton.
	BoneIndex int

	// Kind is the transform component the channel drives.
	Kind ChannelKind
}
