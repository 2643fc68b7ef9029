package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every draw is auditable.
// All draws are logged at debug level with a label, bound and result.
//
// Roller itself satisfies Source.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Draw returns src.Intn(n) and logs it under label.
//
// Precondition: n > 0.
func (r *Roller) Draw(label string, n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice draw",
		zap.String("label", label),
		zap.Int("n", n),
		zap.Int("result", v),
	)
	return v
}

// Intn implements Source.
func (r *Roller) Intn(n int) int {
	return r.Draw("intn", n)
}
