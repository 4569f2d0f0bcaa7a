package gorm

import (
	"fmt"

	"github.com/cookease/api/internal/domain/ingredient"
	"github.com/cookease/api/internal/domain/recipe"
	"github.com/cookease/api/internal/domain/user"
	"github.com/google/uuid"
)

func userToModel(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID(),
		Username:     u.Username(),
		Email:        u.Email(),
		PasswordHash: u.PasswordHash(),
		GoogleID:     u.GoogleID(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

// modelToUser rebuilds the domain user. Favorites and cart lines must be
// preloaded on the model.
func modelToUser(model *UserModel) *user.User {
	favorites := make([]uuid.UUID, 0, len(model.Favorites))
	for _, fav := range model.Favorites {
		favorites = append(favorites, fav.RecipeID)
	}

	cart := make([]user.CartLine, 0, len(model.CartLines))
	for _, line := range model.CartLines {
		cart = append(cart, cartLineFromModel(&line))
	}

	return user.Rehydrate(model.ID, model.Username, model.Email,
		model.PasswordHash, model.GoogleID, nil, favorites, cart,
		model.CreatedAt, model.UpdatedAt)
}

func cartLineToModel(userID uuid.UUID, line user.CartLine) *CartLineModel {
	return &CartLineModel{
		UserID:       userID,
		IngredientID: line.IngredientID,
		Name:         line.Name,
		Price:        line.Price,
		Unit:         line.Unit,
		Quantity:     line.Quantity,
		Image:        line.Image,
		AddedAt:      line.AddedAt,
	}
}

func cartLineFromModel(model *CartLineModel) user.CartLine {
	return user.CartLine{
		IngredientID: model.IngredientID,
		Name:         model.Name,
		Price:        model.Price,
		Unit:         model.Unit,
		Quantity:     model.Quantity,
		Image:        model.Image,
		AddedAt:      model.AddedAt,
	}
}

func recipeToModel(r *recipe.Recipe) *RecipeModel {
	ingredients := make(JSONField, 0, len(r.Ingredients()))
	for _, ing := range r.Ingredients() {
		ingredients = append(ingredients, map[string]interface{}{
			"refId":    ing.RefID,
			"name":     ing.Name,
			"quantity": ing.Quantity,
		})
	}

	return &RecipeModel{
		ID:             r.ID(),
		Title:          r.Title(),
		Image:          r.Image(),
		Description:    r.Description(),
		Country:        r.Country(),
		MainIngredient: r.MainIngredient(),
		Allergens:      StringSlice(r.Allergens()),
		CookTime:       r.CookTime(),
		Rating:         r.Rating(),
		Ingredients:    ingredients,
		Instructions:   r.Instructions(),
		Nutrition:      StringMap(r.Nutrition()),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
	}
}

func modelToRecipe(model *RecipeModel) *recipe.Recipe {
	ingredients := make([]recipe.Ingredient, 0, len(model.Ingredients))
	for _, raw := range model.Ingredients {
		ingredients = append(ingredients, recipe.Ingredient{
			RefID:    stringField(raw, "refId"),
			Name:     stringField(raw, "name"),
			Quantity: stringField(raw, "quantity"),
		})
	}

	return recipe.Rehydrate(model.ID, model.Title, model.Image,
		model.Description, model.Country, model.MainIngredient,
		model.CookTime, model.Instructions, model.Rating,
		[]string(model.Allergens), ingredients,
		recipe.Nutrition(model.Nutrition),
		model.CreatedAt, model.UpdatedAt)
}

func ingredientToModel(ing *ingredient.Ingredient) *IngredientModel {
	return &IngredientModel{
		ID:             ing.ID,
		Name:           ing.Name,
		Price:          ing.Price,
		Unit:           ing.Unit,
		Image:          ing.Image,
		Sell:           ing.Sell,
		StoreURLs:      StringMap(ing.StoreURLs),
		Description:    ing.Description,
		Nutrition:      StringMap(ing.Nutrition),
		AdditionalInfo: ing.AdditionalInfo,
	}
}

func modelToIngredient(model *IngredientModel) *ingredient.Ingredient {
	return &ingredient.Ingredient{
		ID:             model.ID,
		Name:           model.Name,
		Price:          model.Price,
		Unit:           model.Unit,
		Image:          model.Image,
		Sell:           model.Sell,
		StoreURLs:      map[string]string(model.StoreURLs),
		Description:    model.Description,
		Nutrition:      map[string]string(model.Nutrition),
		AdditionalInfo: model.AdditionalInfo,
	}
}

func stringField(raw map[string]interface{}, key string) string {
	if v, ok := raw[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
