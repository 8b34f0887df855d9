package filter

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"speteval/internal/logging"
	"speteval/internal/validation"
)

// ErrUnknownValidator reports a name that is not registered.
var ErrUnknownValidator = errors.New("unknown validator")

// Registry is an ordered, name-keyed set of validators.
type Registry struct {
	logger *slog.Logger
	order  []validation.Name
	byName map[validation.Name]validation.Validator
}

// NewRegistry returns a registry holding validators in the given order.
func NewRegistry(logger *slog.Logger, validators ...validation.Validator) *Registry {
	r := &Registry{
		logger: logging.NewComponentLogger(logger, "registry"),
		byName: make(map[validation.Name]validation.Validator, len(validators)),
	}
	for _, v := range validators {
		r.Add(v)
	}
	return r
}

// Add registers v under its name. An existing entry with the same name is
// replaced in place and a warning is logged; the return value reports
// whether that happened.
func (r *Registry) Add(v validation.Validator) bool {
	name := v.Name()
	if _, exists := r.byName[name]; exists {
		r.byName[name] = v
		logging.WarnWithContext(r.logger, "validator replaced", "validator_replaced",
			logging.String(logging.FieldValidator, string(name)),
			logging.String(logging.FieldErrorHint, "register each validator once"),
			logging.String(logging.FieldImpact, "previous configuration for this validator discarded"),
		)
		return true
	}
	r.byName[name] = v
	r.order = append(r.order, name)
	return false
}

// Remove unregisters name. Removing a name that is not registered returns
// ErrUnknownValidator.
func (r *Registry) Remove(name validation.Name) error {
	if _, exists := r.byName[name]; !exists {
		return fmt.Errorf("remove %q: %w", name, ErrUnknownValidator)
	}
	delete(r.byName, name)
	r.order = slices.DeleteFunc(r.order, func(n validation.Name) bool { return n == name })
	return nil
}

// Get returns the validator registered under name.
func (r *Registry) Get(name validation.Name) (validation.Validator, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// Len returns the number of registered validators.
func (r *Registry) Len() int {
	return len(r.order)
}

// Names returns registered names in evaluation order.
func (r *Registry) Names() []validation.Name {
	names := make([]validation.Name, 0, len(r.order))
	for _, v := range r.Validators() {
		names = append(names, v.Name())
	}
	return names
}

// Validators returns the registered validators in evaluation order:
// loadability first, then insertion order.
func (r *Registry) Validators() []validation.Validator {
	out := make([]validation.Validator, 0, len(r.order))
	if v, ok := r.byName[validation.NameLoadability]; ok {
		out = append(out, v)
	}
	for _, name := range r.order {
		if name == validation.NameLoadability {
			continue
		}
		out = append(out, r.byName[name])
	}
	return out
}
