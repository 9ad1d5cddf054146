package bvh

import (
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
	"github.com/go-gl/mathgl/mgl64"
)

// motionHeader is the parsed `MOTION Frames: n Frame Time: s` preamble.
type motionHeader struct {
	frames          int
	secondsPerFrame float64
}

// parseMotionHeader reads the MOTION preamble.
func parseMotionHeader(s *scanner) (motionHeader, error) {
	var h motionHeader
	if _, err := s.expect(keywordMotion); err != nil {
		return h, err
	}
	if _, err := s.expect("Frames:"); err != nil {
		return h, err
	}
	countTok := s.peek()
	n, err := s.integer()
	if err != nil {
		return h, err
	}
	if n < 0 {
		return h, s.errorf(ErrArity, countTok, "negative frame count")
	}
	if _, err := s.expect("Frame"); err != nil {
		return h, err
	}
	if _, err := s.expect("Time:"); err != nil {
		return h, err
	}
	timeTok := s.peek()
	spf, err := s.number()
	if err != nil {
		return h, err
	}
	if spf <= 0 {
		return h, s.errorf(ErrGrammar, timeTok, "frame time must be positive")
	}
	h.frames = n
	h.secondsPerFrame = spf
	return h, nil
}

// readFrameRows collects the remaining tokens as one row of values per source line.
// Every row must hold exactly width values and there must be exactly frames rows.
func readFrameRows(s *scanner, frames, width int) ([][]float64, error) {
	rows := make([][]float64, 0, frames)
	for !s.eof() {
		line := s.peek().line
		if len(rows) == frames {
			return nil, s.errorf(ErrArity, s.peek(), "data continues after the declared %d frames", frames)
		}
		row := make([]float64, 0, width)
		for !s.eof() && s.peek().line == line {
			t := s.next()
			v, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, s.errorf(ErrGrammar, t, "expected a number")
			}
			row = append(row, v)
		}
		if len(row) != width {
			return nil, &ParseError{Path: s.path, Line: line, Kind: ErrArity,
				Msg: fmt.Sprintf("frame %d has %d values, want %d", len(rows), len(row), width)}
		}
		rows = append(rows, row)
	}
	if width > 0 && len(rows) < frames {
		return nil, &ParseError{Path: s.path, Line: s.lastLine(), Kind: ErrArity,
			Msg: fmt.Sprintf("declared %d frames, found %d", frames, len(rows))}
	}
	for len(rows) < frames {
		rows = append(rows, nil)
	}
	return rows, nil
}

// DecodeFrames turns raw per-frame channel values into a clip of local poses.
//
// Every bone starts each frame at its rest offset. Each channel value is then applied to its
// bone as an incremental translation or rotation (degrees) that right-multiplies the bone's
// running matrix, so later channels act in the frame set up by earlier ones. The result is
// decomposed back into translation and axis-angle rotation with unit scale.
//
// Parameters:
//   - skeleton: the skeleton the channels refer to
//   - channels: channel bindings in declaration order
//   - secondsPerFrame: the clip's frame spacing (must be positive)
//   - frames: one row of len(channels) values per frame
//   - tol: allowed deviation of each basis column length from 1 during decomposition
//
// Returns:
//   - *animation.Clip: the decoded clip
//   - error: a ParseError wrapping ErrArity or ErrInvariant on malformed input
func DecodeFrames(skeleton *animation.Skeleton, channels []animation.Channel, secondsPerFrame float64, frames [][]float64, tol float64) (*animation.Clip, error) {
	if secondsPerFrame <= 0 {
		return nil, &ParseError{Kind: ErrGrammar, Msg: "frame time must be positive"}
	}
	for _, ch := range channels {
		if ch.BoneIndex < 0 || ch.BoneIndex >= skeleton.Len() {
			return nil, &ParseError{Kind: ErrInvariant, Msg: fmt.Sprintf("channel %s targets missing bone %d", ch.Kind, ch.BoneIndex)}
		}
	}

	clip := &animation.Clip{Frames: make([]animation.Pose, len(frames)), SecondsPerFrame: secondsPerFrame}
	mats := make([]mgl64.Mat4, skeleton.Len())
	for f, values := range frames {
		if len(values) < len(channels) {
			return nil, &ParseError{Kind: ErrArity, Msg: fmt.Sprintf("frame %d has %d values, want %d", f, len(values), len(channels))}
		}
		for i, b := range skeleton.Bones {
			mats[i] = mgl64.Translate3D(b.Offset[0], b.Offset[1], b.Offset[2])
		}
		for c, ch := range channels {
			mats[ch.BoneIndex] = mats[ch.BoneIndex].Mul4(channelMatrix(ch.Kind, values[c]))
		}

		pose := make(animation.Pose, len(mats))
		for i, m := range mats {
			trs, err := animation.DecomposeTRS(m, tol)
			if err != nil {
				return nil, &ParseError{Kind: ErrInvariant, Msg: fmt.Sprintf("frame %d bone %q: %v", f, skeleton.Bones[i].Name, err)}
			}
			pose[i] = trs
		}
		clip.Frames[f] = pose
	}
	return clip, nil
}

// channelMatrix is the incremental transform contributed by one channel value.
func channelMatrix(kind animation.ChannelKind, v float64) mgl64.Mat4 {
	switch kind {
	case animation.TranslateX:
		return mgl64.Translate3D(v, 0, 0)
	case animation.TranslateY:
		return mgl64.Translate3D(0, v, 0)
	case animation.TranslateZ:
		return mgl64.Translate3D(0, 0, v)
	case animation.RotateX:
		return mgl64.HomogRotate3DX(mgl64.DegToRad(v))
	case animation.RotateY:
		return mgl64.HomogRotate3DY(mgl64.DegToRad(v))
	case animation.RotateZ:
		return mgl64.HomogRotate3DZ(mgl64.DegToRad(v))
	}
	return mgl64.Ident4()
}
