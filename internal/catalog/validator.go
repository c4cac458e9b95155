package catalog

// Pool validation runs once at startup. A pool the rotation cannot index
// (empty, blank IDs, non-positive prices) is a configuration error and must
// stop the process before it serves a single request.

import (
	"fmt"
	"strings"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(pools *Pools) error {
	if pools == nil {
		return fmt.Errorf("pet pools are required")
	}

	if err := v.validatePool(pools.Common, RarityCommon); err != nil {
		return err
	}
	if err := v.validatePool(pools.Rare, RarityRare); err != nil {
		return err
	}
	return v.validatePool(pools.Legendary, RarityLegendary)
}

func (v *Validator) validatePool(pool []Pet, rarity Rarity) error {
	if len(pool) == 0 {
		return fmt.Errorf("%s pool must not be empty", strings.ToLower(string(rarity)))
	}

	ids := make(map[string]bool, len(pool))
	for i, pet := range pool {
		if err := v.validatePet(&pet, rarity); err != nil {
			return fmt.Errorf("%s pool entry %d: %w", strings.ToLower(string(rarity)), i, err)
		}

		if ids[pet.ID] {
			return fmt.Errorf("%s pool: duplicate pet id: %s", strings.ToLower(string(rarity)), pet.ID)
		}
		ids[pet.ID] = true
	}

	return nil
}

func (v *Validator) validatePet(pet *Pet, rarity Rarity) error {
	if strings.TrimSpace(pet.ID) == "" {
		return fmt.Errorf("pet id is required")
	}

	if strings.TrimSpace(pet.Name) == "" {
		return fmt.Errorf("pet name is required")
	}

	if pet.Rarity != rarity {
		return fmt.Errorf("pet %s has rarity %q, expected %q", pet.ID, pet.Rarity, rarity)
	}

	if pet.Price <= 0 {
		return fmt.Errorf("pet %s must have a positive price", pet.ID)
	}

	return nil
}
