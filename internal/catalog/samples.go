package catalog

import "github.com/hammamikhairi/recipebook/internal/domain"

// SampleRecipes returns the bundled sample dataset used to bootstrap an
// empty catalog while the API client is in mock mode. Each call returns
// fresh copies.
func SampleRecipes() []domain.Recipe {
	out := make([]domain.Recipe, len(sampleRecipes))
	for i, r := range sampleRecipes {
		out[i] = r.Clone()
	}
	return out
}

func sampleByID(id string) (domain.Recipe, bool) {
	for _, r := range sampleRecipes {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return domain.Recipe{}, false
}

var sampleRecipes = []domain.Recipe{
	{
		ID:          "1",
		Title:       "Lemon Herb Grilled Salmon",
		Description: "Juicy salmon with zesty lemon and fresh herbs.",
		Cuisine:     "Mediterranean",
		Difficulty:  domain.DifficultyMedium,
		TimeMinutes: 30,
		Tags:        []string{"seafood", "grill", "healthy"},
		Image:       "https://images.unsplash.com/photo-1544025162-d76694265947?q=80&w=1200&auto=format&fit=crop",
		Ingredients: []string{"Salmon fillets", "Lemon", "Olive oil", "Parsley", "Garlic", "Salt", "Pepper"},
		Steps:       []string{"Preheat grill", "Mix marinade", "Coat salmon", "Grill 4-5 mins each side", "Serve"},
	},
	{
		ID:          "2",
		Title:       "Classic Margherita Pizza",
		Description: "Crispy crust with tomato, mozzarella, and basil.",
		Cuisine:     "Italian",
		Difficulty:  domain.DifficultyHard,
		TimeMinutes: 90,
		Tags:        []string{"baked", "vegetarian"},
		Image:       "https://images.unsplash.com/photo-1548365328-9f547fb61558?q=80&w=1200&auto=format&fit=crop",
	},
	{
		ID:          "3",
		Title:       "Quick Veggie Stir-Fry",
		Description: "Colorful vegetables tossed in a savory sauce.",
		Cuisine:     "Asian",
		Difficulty:  domain.DifficultyEasy,
		TimeMinutes: 20,
		Tags:        []string{"quick", "vegan", "healthy"},
		Image:       "https://images.unsplash.com/photo-1505577058444-a3dab90d4253?q=80&w=1200&auto=format&fit=crop",
	},
}
