package predict

import (
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/internal/entropy"
)

// Choice is the outcome of Choose.
type Choice struct {
	Predictor Predictor
	Residuals []int64
	Payload   []byte
}

// Choose encodes values with every candidate and keeps the one with the
// smallest entropy payload. Ties keep the earlier candidate.
func Choose(candidates []Predictor, values []int64, components int, method format.EntropyMethod) (Choice, error) {
	var best Choice
	for _, p := range candidates {
		residuals := EncodeResiduals(p, values, components)
		payload, err := entropy.EncodeSigned(method, residuals)
		if err != nil {
			return Choice{}, err
		}

		if best.Predictor == nil || len(payload) < len(best.Payload) {
			best = Choice{Predictor: p, Residuals: residuals, Payload: payload}
		}
	}

	return best, nil
}
