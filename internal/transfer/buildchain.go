package transfer

import (
	"github.com/five82/jvlbi/internal/chain"
	"github.com/five82/jvlbi/internal/constraints"
	"github.com/five82/jvlbi/internal/headers"
	"github.com/five82/jvlbi/internal/trackmask"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"
)

// ChainSpec is the resolved shape of a transfer's chain: the constraint set
// it was solved from, an optional compression program, and an optional
// fixed-frame descriptor — the three pieces of state §3.11 says BuildChain
// assembles before appending steps.
type ChainSpec struct {
	Constraints constraints.Set
	Compressor  *trackmask.Solution
	Descriptor  *headers.Descriptor
}

// BuildChain is the one place that asks internal/constraints to derive
// sizes, internal/trackmask to plan a compression program if requested,
// and internal/headers for a frame Descriptor if a fixed format is named,
// then returns the pieces needed to append a running chain's steps
// (§2's "pipeline is linear or near-linear" realized concretely).
func BuildChain(in constraints.Set, trackMask uint64, format headers.Format, frameSize uint64) (*ChainSpec, error) {
	spec := &ChainSpec{}

	var comp constraints.Compressor = constraints.IdentityCompressor{}
	if trackMask != 0 {
		sol, err := trackmask.Plan(trackMask)
		if err != nil {
			return nil, jvlbierrors.NewOperationFailedError("transfer: failed to plan compression", err)
		}
		spec.Compressor = sol
		comp = trackmaskCompressorAdapter{sol}
	}

	var out constraints.Set
	var err error
	if _, haveFramesize := in[constraints.Framesize]; haveFramesize || frameSize != 0 {
		fs := frameSize
		if haveFramesize {
			fs = in[constraints.Framesize]
		}
		out, err = constraints.ConstrainByFramesize(in, fs, comp)
	} else {
		out, err = constraints.ConstrainByBlocksize(in, comp)
	}
	if err != nil {
		return nil, err
	}
	spec.Constraints = out

	if format != 0 || frameSize != 0 {
		headerSize := int(out[constraints.CompressOffset])
		desc, err := headers.NewDescriptor(format, 0, 0, 0, 0, headerSize, int(frameSize), headerSize, nil)
		if err == nil {
			spec.Descriptor = desc
		}
	}

	return spec, nil
}

// trackmaskCompressorAdapter makes a trackmask.Solution satisfy
// constraints.Compressor: a compression plan's ratio (sourceWords :
// compressed words) scales any uncompressed size by that ratio.
type trackmaskCompressorAdapter struct {
	sol *trackmask.Solution
}

func (a trackmaskCompressorAdapter) CompressedSize(n uint64) uint64 {
	in, out := a.sol.Ratio()
	if in == 0 {
		return n
	}
	return n * uint64(out) / uint64(in)
}

func (a trackmaskCompressorAdapter) UncompressedSize(n uint64) uint64 {
	in, out := a.sol.Ratio()
	if out == 0 {
		return n
	}
	return n * uint64(in) / uint64(out)
}

// newLinearChain appends one source step, an optional compression step, and
// one sink step to a fresh chain.Chain, wiring a single intermediate queue
// per adjacent pair — the shape every concrete transfer mode's builder
// specializes with its own step bodies.
func newLinearChain(queueCapacity int, source chain.Step, sink chain.Step, compress *chain.Step) (*chain.Chain, error) {
	c := chain.New()

	if _, err := c.AppendStep(source); err != nil {
		return nil, err
	}

	steps := []chain.Step{}
	if compress != nil {
		steps = append(steps, *compress)
	}
	steps = append(steps, sink)

	for _, s := range steps {
		if _, err := c.AppendQueue(queueCapacity); err != nil {
			return nil, err
		}
		if _, err := c.AppendStep(s); err != nil {
			return nil, err
		}
	}

	if err := c.Close(); err != nil {
		return nil, err
	}
	return c, nil
}
