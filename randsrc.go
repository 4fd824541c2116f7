package pktsim

// randsrc.go creates the random number sources drawn on by traffic sources and
// link models.  Every stream is derived from the experiment parameters, never from
// global random state, so that a run is reproducible.

import (
	"github.com/iti/rngstream"
	"golang.org/x/exp/rand"
)

// Random number generator kinds
const (
	PCGRng       = "pcg"
	RngStreamRng = "rngstream"
)

// golden-ratio increment used to spread stream seeds apart
const seedStride uint64 = 0x9E3779B97F4A7C15

// rngstream master seeds must be below the generator's second modulus
const maxRngStreamSeed uint64 = 4294944437

// SourceFactory hands out independent random sources, one per named stream
type SourceFactory struct {
	kind string
	seed uint64
	next uint64
}

// CreateSourceFactory is a constructor.  An empty kind means PCGRng.
// For RngStreamRng the package master seed is reset from seed, so streams
// created afterward, in the same order, repeat
func CreateSourceFactory(kind string, seed uint64) (*SourceFactory, error) {
	switch kind {
	case "", PCGRng:
		kind = PCGRng
	case RngStreamRng:
		if seed == 0 || seed >= maxRngStreamSeed {
			return nil, cfgErr("params.seed", "must lie in [1,%d) for rngstream, got %d", maxRngStreamSeed, seed)
		}
		rngstream.SetRngStreamMasterSeed(seed)
	default:
		return nil, cfgErr("params.rng", "unknown generator %q", kind)
	}
	return &SourceFactory{kind: kind, seed: seed}, nil
}

// Source returns the next stream.  Streams are handed out in call order, so the
// same sequence of calls on factories with the same seed yields the same streams.
func (sf *SourceFactory) Source(name string) rand.Source {
	sf.next += 1
	if sf.kind == RngStreamRng {
		return &rngStreamSource{strm: rngstream.New(name)}
	}
	return rand.NewSource(sf.seed ^ (sf.next * seedStride))
}

// rngStreamSource lets a RngStream serve as a rand.Source
type rngStreamSource struct {
	strm *rngstream.RngStream
}

// Uint64 assembles 64 bits from two U(0,1) samples
func (rs *rngStreamSource) Uint64() uint64 {
	hi := uint64(rs.strm.RandU01() * (1 << 32))
	lo := uint64(rs.strm.RandU01() * (1 << 32))
	return hi<<32 | lo
}

// Seed is a no-op, a RngStream's position is fixed by the master seed and its creation order
func (rs *rngStreamSource) Seed(seed uint64) {}
