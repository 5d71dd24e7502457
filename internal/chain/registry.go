package chain

import (
	"fmt"

	"poolFeeSync/internal/model"
)

// Registry is a fixed table of chain handlers keyed by chain type.
type Registry struct {
	handlers map[model.ChainType]Handler
}

// NewRegistry builds a registry. Registering two handlers for one chain type is an error.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[model.ChainType]Handler, len(handlers))}
	for _, h := range handlers {
		if h == nil {
			continue
		}
		if _, exists := r.handlers[h.ChainType()]; exists {
			return nil, fmt.Errorf("duplicate handler for chain type %q", h.ChainType())
		}
		r.handlers[h.ChainType()] = h
	}
	return r, nil
}

// Handler returns the handler registered for chainType.
func (r *Registry) Handler(chainType model.ChainType) (Handler, error) {
	h, ok := r.handlers[chainType]
	if !ok {
		return nil, fmt.Errorf("%w: no handler for chain type %q", ErrUnsupportedChain, chainType)
	}
	return h, nil
}

// ValidatePool checks that a configured pool has a handler and a well formed address.
func (r *Registry) ValidatePool(pool model.Pool) error {
	h, err := r.Handler(pool.ChainType)
	if err != nil {
		return err
	}
	ok, err := h.ValidateAddress(pool.Address, pool.ChainID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: address %s is not valid for %s", ErrInvalidInput, pool.Address, pool.ChainType)
	}
	return nil
}
