package validator

// Validator wraps a chain with input admission (length capping) and is the
// entry point the rest of the system uses. The default chain checks
// encoding first so the syntax layers only ever see well-formed UTF-8, then
// delimiters, escapes, quantifiers and character classes in that order.
type Validator struct {
	chain  *Chain
	maxLen int
}

type Option func(*Validator)

// WithMaxLen caps the admitted input length in bytes. Non-positive values
// are ignored and the default cap stays in effect.
func WithMaxLen(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxLen = n
		}
	}
}

// WithChain replaces the default chain. A nil chain is ignored.
func WithChain(c *Chain) Option {
	return func(v *Validator) {
		if c != nil {
			v.chain = c
		}
	}
}

// DefaultChain returns the standard five-layer chain.
func DefaultChain() *Chain {
	c, err := NewChain(
		encodingLayer{},
		delimiterLayer{},
		escapeLayer{},
		quantifierLayer{},
		charClassLayer{},
	)
	if err != nil {
		// unreachable: the fixed layer set has distinct IDs
		panic(err)
	}
	return c
}

func New(opts ...Option) *Validator {
	v := &Validator{
		chain:  DefaultChain(),
		maxLen: DefaultMaxLen,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Chain returns the validator's chain.
func (v *Validator) Chain() *Chain { return v.chain }

// MaxLen returns the admitted input cap in bytes.
func (v *Validator) MaxLen() int { return v.maxLen }

// Validate admits b, runs the chain, and returns a proof on acceptance.
// Rejections carry a *Violation; oversized inputs carry a *LengthError
// without any layer running.
func (v *Validator) Validate(b []byte) (Proof, error) {
	seq, err := NewSequence(b, v.maxLen)
	if err != nil {
		return Proof{}, err
	}
	return v.chain.Run(seq)
}

// Accepts reports whether b passes the chain, discarding the proof.
func (v *Validator) Accepts(b []byte) bool {
	_, err := v.Validate(b)
	return err == nil
}
