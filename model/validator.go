package model

// Validator is a staking identity allowed to forge blocks.
type Validator struct {
	Name  string
	Stake uint64
}

// ValidatorRegistry is the ordered validator set. Order matters for weighted selection.
type ValidatorRegistry struct {
	Validators []Validator
}

func NewValidatorRegistry(vs []Validator) *ValidatorRegistry {
	cp := make([]Validator, len(vs))
	copy(cp, vs)
	return &ValidatorRegistry{Validators: cp}
}

// Has reports whether name belongs to the registry.
func (r *ValidatorRegistry) Has(name string) bool {
	for _, v := range r.Validators {
		if v.Name == name {
			return true
		}
	}
	return false
}
