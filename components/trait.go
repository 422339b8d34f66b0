package components

// Trait identifies a per-cell value that is averaged over the population and
// can be used as a visualization metric.
type Trait uint8

const (
	TraitNone Trait = iota // lineage color view, not averaged
	TraitMaxAge
	TraitMinEnergy
	TraitMaxEnergy
	TraitReproThreshold
	TraitDamage
	TraitResistance

	NumTraits
)

// TrackedTraits lists every averaged trait in display order.
var TrackedTraits = []Trait{
	TraitMaxAge,
	TraitMinEnergy,
	TraitMaxEnergy,
	TraitReproThreshold,
	TraitDamage,
	TraitResistance,
}

var traitNames = [NumTraits]string{
	TraitNone:           "lineage",
	TraitMaxAge:         "max_age",
	TraitMinEnergy:      "min_energy",
	TraitMaxEnergy:      "max_energy",
	TraitReproThreshold: "repro_threshold",
	TraitDamage:         "damage",
	TraitResistance:     "resistance",
}

// Name returns the trait's config/CSV name.
func (t Trait) Name() string {
	if t >= NumTraits {
		return "unknown"
	}
	return traitNames[t]
}

// ParseTrait looks a trait up by name.
func ParseTrait(name string) (Trait, bool) {
	for i, n := range traitNames {
		if n == name {
			return Trait(i), true
		}
	}
	return TraitNone, false
}
