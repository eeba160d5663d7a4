package auth

import (
	"context"
	"errors"
)

// Chain tries each verifier in order and returns the first success.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, rawToken string) (*Principal, error) {
	if len(c) == 0 {
		return nil, errors.New("no identity provider configured")
	}
	var errs []error
	for _, v := range c {
		p, err := v.Verify(ctx, rawToken)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
