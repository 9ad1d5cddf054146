package bvh

import (
	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
	"github.com/go-gl/mathgl/mgl64"
)

// channelKinds maps CHANNELS keywords to channel kinds.
var channelKinds = map[string]animation.ChannelKind{
	"Xposition": animation.TranslateX,
	"Yposition": animation.TranslateY,
	"Zposition": animation.TranslateZ,
	"Xrotation": animation.RotateX,
	"Yrotation": animation.RotateY,
	"Zrotation": animation.RotateZ,
}

const (
	keywordHierarchy = "HIERARCHY"
	keywordRoot      = "ROOT"
	keywordJoint     = "JOINT"
	keywordEnd       = "End"
	keywordOffset    = "OFFSET"
	keywordChannels  = "CHANNELS"
	keywordMotion    = "MOTION"
)

// hierarchyParser accumulates bones and channels while walking the HIERARCHY section.
type hierarchyParser struct {
	s        *scanner
	bones    []animation.Bone
	channels []animation.Channel
}

// parseHierarchy reads `HIERARCHY ROOT ... { ... }` and stops in front of the MOTION keyword
// or at end of input. Bones are appended as their opening brace is read, so every parent
// lands before its children.
func parseHierarchy(s *scanner) (*animation.Skeleton, []animation.Channel, error) {
	if _, err := s.expect(keywordHierarchy); err != nil {
		return nil, nil, err
	}

	p := &hierarchyParser{s: s}
	rootSeen := false
	for !s.eof() && s.peek().text != keywordMotion {
		t := s.next()
		switch t.text {
		case keywordRoot:
			if rootSeen {
				return nil, nil, s.errorf(ErrGrammar, t, "only one ROOT is allowed")
			}
			rootSeen = true
			if err := p.node(t, -1); err != nil {
				return nil, nil, err
			}
		case keywordJoint, keywordEnd:
			return nil, nil, s.errorf(ErrGrammar, t, "top-level node must be ROOT")
		case "}":
			if rootSeen {
				return nil, nil, s.errorf(ErrGrammar, t, "unbalanced closing brace")
			}
			return nil, nil, s.errorf(ErrGrammar, t, "closing brace before ROOT was opened")
		default:
			return nil, nil, s.errorf(ErrGrammar, t, "unexpected token in HIERARCHY")
		}
	}
	if !rootSeen {
		return nil, nil, s.errorf(ErrGrammar, s.peek(), "HIERARCHY has no ROOT")
	}
	return &animation.Skeleton{Bones: p.bones}, p.channels, nil
}

// node parses one ROOT, JOINT or End block whose keyword has already been consumed.
func (p *hierarchyParser) node(keyword token, parent int) error {
	s := p.s
	nameTok := s.next()
	if nameTok.text == "" || nameTok.text == "{" || nameTok.text == "}" {
		return s.errorf(ErrGrammar, nameTok, "%s needs a name", keyword.text)
	}
	name := nameTok.text
	if keyword.text == keywordEnd {
		// End Site blocks are named after the bone they terminate.
		name = "End"
		if parent >= 0 {
			name = p.bones[parent].Name + "_End"
		}
	}

	if _, err := s.expect("{"); err != nil {
		return err
	}

	index := len(p.bones)
	p.bones = append(p.bones, animation.Bone{Name: name, ParentIndex: parent})

	if _, err := s.expect(keywordOffset); err != nil {
		return err
	}
	var offset mgl64.Vec3
	for i := range offset {
		v, err := s.number()
		if err != nil {
			return err
		}
		offset[i] = v
	}
	p.bones[index].Offset = offset
	if parent >= 0 {
		p.bones[index].End = p.bones[parent].End.Add(offset)
	} else {
		p.bones[index].End = offset
	}

	if s.peek().text == keywordChannels {
		if err := p.channelList(index); err != nil {
			return err
		}
	}

	for {
		t := s.next()
		switch t.text {
		case "}":
			return nil
		case keywordJoint, keywordEnd:
			if err := p.node(t, index); err != nil {
				return err
			}
		case keywordRoot:
			return s.errorf(ErrGrammar, t, "ROOT may only appear at the top level")
		case "":
			return s.errorf(ErrGrammar, t, "unbalanced braces: %q is never closed", name)
		default:
			return s.errorf(ErrGrammar, t, "unexpected token in %q", name)
		}
	}
}

// channelList parses `CHANNELS n k1 ... kn` for the bone at index.
func (p *hierarchyParser) channelList(index int) error {
	s := p.s
	s.next()
	countTok := s.peek()
	n, err := s.integer()
	if err != nil {
		return err
	}
	if n < 0 {
		return s.errorf(ErrGrammar, countTok, "negative channel count")
	}
	for i := 0; i < n; i++ {
		t := s.next()
		kind, ok := channelKinds[t.text]
		if !ok {
			if t.text == "" {
				return s.errorf(ErrGrammar, t, "CHANNELS declares %d entries, input ended after %d", n, i)
			}
			return s.errorf(ErrChannel, t, "unknown channel kind")
		}
		p.channels = append(p.channels, animation.Channel{BoneIndex: index, Kind: kind})
	}
	return nil
}
