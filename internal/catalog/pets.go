// Package catalog holds the pet definitions and the hourly shop rotation.
package catalog

// Rarity tags a pet definition with the pool it is drawn from.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityLegendary Rarity = "Legendary"
)

// Pet is a static, immutable pet definition. Prices are in NEX.
type Pet struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Emoji       string `json:"emoji" yaml:"emoji"`
	Rarity      Rarity `json:"rarity" yaml:"rarity"`
	Description string `json:"description" yaml:"description"`
	Price       int    `json:"price" yaml:"price"`
}

// Pools are the ordered rarity pools the rotation draws from. Order matters:
// it is the index space for the deterministic selection.
type Pools struct {
	Common    []Pet `yaml:"common"`
	Rare      []Pet `yaml:"rare"`
	Legendary []Pet `yaml:"legendary"`
}

// DefaultPools returns the production pet pools.
func DefaultPools() Pools {
	return Pools{
		Common: []Pet{
			{ID: "dog", Name: "Loyal Dog", Emoji: "🐕", Rarity: RarityCommon, Description: "A faithful companion", Price: 500},
			{ID: "cat", Name: "Cute Cat", Emoji: "🐈", Rarity: RarityCommon, Description: "Independent and playful", Price: 500},
			{ID: "rabbit", Name: "Fluffy Rabbit", Emoji: "🐇", Rarity: RarityCommon, Description: "Soft and cuddly", Price: 600},
			{ID: "hamster", Name: "Tiny Hamster", Emoji: "🐹", Rarity: RarityCommon, Description: "Small and adorable", Price: 400},
		},
		Rare: []Pet{
			{ID: "wolf", Name: "Wild Wolf", Emoji: "🐺", Rarity: RarityRare, Description: "Fierce and loyal", Price: 2000},
			{ID: "fox", Name: "Clever Fox", Emoji: "🦊", Rarity: RarityRare, Description: "Smart and cunning", Price: 2500},
			{ID: "panda", Name: "Rare Panda", Emoji: "🐼", Rarity: RarityRare, Description: "Endangered species", Price: 3000},
		},
		Legendary: []Pet{
			{ID: "dragon", Name: "Fire Dragon", Emoji: "🐉", Rarity: RarityLegendary, Description: "Mythical beast!", Price: 10000},
			{ID: "unicorn", Name: "Mystical Unicorn", Emoji: "🦄", Rarity: RarityLegendary, Description: "Magical creature", Price: 15000},
		},
	}
}
