package validator

import (
	"fmt"
	"strings"
)

// Chain runs an ordered list of layers over a sequence and mints a Proof
// when every layer accepts. Evaluation is strict: the first violating layer
// stops the chain and later layers never see the input.
type Chain struct {
	layers []Layer
}

// NewChain builds a chain from the given layers, preserving order.
// Duplicate layer IDs are rejected so a proof's chain description stays
// unambiguous.
func NewChain(layers ...Layer) (*Chain, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("chain requires at least one layer")
	}
	seen := make(map[LayerID]struct{}, len(layers))
	for _, l := range layers {
		if _, dup := seen[l.ID()]; dup {
			return nil, fmt.Errorf("duplicate layer %q in chain", l.ID())
		}
		seen[l.ID()] = struct{}{}
	}
	return &Chain{layers: layers}, nil
}

// Layers returns the layer IDs in evaluation order.
func (c *Chain) Layers() []LayerID {
	ids := make([]LayerID, len(c.layers))
	for i, l := range c.layers {
		ids[i] = l.ID()
	}
	return ids
}

// Describe renders the chain as "encoding>delimiters>..." for embedding in
// proofs and ledger records.
func (c *Chain) Describe() string {
	var sb strings.Builder
	for i, l := range c.layers {
		if i > 0 {
			sb.WriteByte('>')
		}
		sb.WriteString(string(l.ID()))
	}
	return sb.String()
}

// Run evaluates the chain against seq. On acceptance it returns a Proof
// bound to the sequence's digest; on rejection it returns the first
// violation encountered, in layer order.
func (c *Chain) Run(seq Sequence) (Proof, error) {
	b := seq.Bytes()
	for _, l := range c.layers {
		if v := l.Check(b); v != nil {
			return Proof{}, v
		}
	}
	return Proof{
		chain:  c.Describe(),
		digest: seq.Digest(),
		length: seq.Len(),
		valid:  true,
	}, nil
}

// Proof is evidence that a particular sequence passed a particular chain.
// The zero Proof is invalid and proofs cannot be constructed outside this
// package, so holding a valid Proof implies the chain actually ran.
type Proof struct {
	chain  string
	digest [32]byte
	length int
	valid  bool
}

// Valid reports whether the proof was minted by a chain run.
func (p Proof) Valid() bool { return p.valid }

// Chain returns the chain description the proof was minted under.
func (p Proof) Chain() string { return p.chain }

// Digest returns the digest of the proven sequence.
func (p Proof) Digest() [32]byte { return p.digest }

// Length returns the proven sequence's length in bytes.
func (p Proof) Length() int { return p.length }

// Covers reports whether the proof was minted for exactly this sequence.
func (p Proof) Covers(seq Sequence) bool {
	return p.valid && p.length == seq.Len() && p.digest == seq.Digest()
}

func (p Proof) String() string {
	if !p.valid {
		return "proof(invalid)"
	}
	return fmt.Sprintf("proof(%s, %d bytes, %x)", p.chain, p.length, p.digest[:4])
}
