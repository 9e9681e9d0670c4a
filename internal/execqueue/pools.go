package execqueue

import "podknight/internal/encoder"

// Pools holds the per-kind gate handles. Audio may alias Video.
type Pools struct {
	Video *Gate
	Audio *Gate
}

// NewPools builds the gates. An audio size of zero makes both kinds draw from
// the video gate.
func NewPools(video, audio int) Pools {
	v := NewGate("video", video)
	if audio <= 0 {
		return Pools{Video: v, Audio: v}
	}
	return Pools{Video: v, Audio: NewGate("audio", audio)}
}

// Shared reports whether both kinds use one gate.
func (p Pools) Shared() bool {
	return p.Video == p.Audio
}

// For returns the gate that limits encodes of the given kind.
func (p Pools) For(kind encoder.Kind) *Gate {
	if kind == encoder.KindAudio {
		return p.Audio
	}
	return p.Video
}
