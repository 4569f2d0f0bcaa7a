// Package recommend orchestrates AI recipe recommendations: it builds a
// prompt from the catalog and the user's favorites, asks an external text
// generator for recipe ids, and resolves those ids back to full records.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	apprecipe "github.com/cookease/api/internal/application/recipe"
	"github.com/cookease/api/internal/domain/recipe"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRecommendationUnavailable covers every generator-side failure: the call
// itself, malformed output, or output that parses to nothing usable. Clients
// see a single category regardless of which stage failed.
var ErrRecommendationUnavailable = errors.New("recommendation generation failed")

const recommendationCount = 3

// bracketPattern grabs the first bracketed id list in the generator output,
// tolerating surrounding prose.
var (
	bracketPattern = regexp.MustCompile(`(?s)\[(.*?)\]`)
	fencedPattern  = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")
)

// Service implements the recommendation use case.
type Service struct {
	recipes   outbound.RecipeRepository
	users     outbound.UserRepository
	generator outbound.TextGenerator
	logger    *zap.Logger
}

// NewService creates a new recommendation service.
func NewService(
	recipes outbound.RecipeRepository,
	users outbound.UserRepository,
	generator outbound.TextGenerator,
	logger *zap.Logger,
) *Service {
	return &Service{
		recipes:   recipes,
		users:     users,
		generator: generator,
		logger:    logger.Named("recommend-service"),
	}
}

// Result carries the resolved recommendations and which prompt variant
// produced them.
type Result struct {
	Recipes       []apprecipe.RecipeDTO `json:"recipes"`
	FromFavorites bool                  `json:"fromFavorites"`
}

type catalogEntry struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Country        string   `json:"country"`
	MainIngredient string   `json:"mainIngredient"`
	Allergens      []string `json:"allergens"`
	Description    string   `json:"description"`
	Rating         float64  `json:"rating,omitempty"`
}

type favoriteEntry struct {
	Title          string   `json:"title"`
	Country        string   `json:"country"`
	MainIngredient string   `json:"mainIngredient"`
	Allergens      []string `json:"allergens"`
}

// Recommend returns up to three recipes for the user. A nil userID means an
// anonymous caller, who gets the cold-start variant. Ids the generator
// invents are dropped; ids the catalog resolves keep the generator's order.
func (s *Service) Recommend(ctx context.Context, userID *uuid.UUID) (*Result, error) {
	catalog, err := s.recipes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var favorites []*recipe.Recipe
	if userID != nil {
		ids, err := s.users.Favorites(ctx, *userID)
		if err != nil {
			return nil, err
		}
		favorites, err = s.recipes.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve favorites: %w", err)
		}
	}

	prompt := buildPrompt(favorites, catalog)

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generator call failed", zap.Error(err))
		return nil, ErrRecommendationUnavailable
	}

	ids, err := parseIDList(raw)
	if err != nil {
		s.logger.Warn("generator output unparseable",
			zap.Error(err),
			zap.Int("response_len", len(raw)))
		return nil, ErrRecommendationUnavailable
	}

	resolved, err := s.resolveOrdered(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &Result{
		Recipes:       resolved,
		FromFavorites: len(favorites) > 0,
	}, nil
}

// resolveOrdered fetches the recommended recipes and returns them in the
// generator's order, silently dropping ids the catalog does not know.
func (s *Service) resolveOrdered(ctx context.Context, ids []string) ([]apprecipe.RecipeDTO, error) {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		parsed = append(parsed, id)
	}

	found, err := s.recipes.FindByIDs(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("resolve recommendations: %w", err)
	}
	byID := make(map[uuid.UUID]*recipe.Recipe, len(found))
	for _, rec := range found {
		byID[rec.ID()] = rec
	}

	out := make([]apprecipe.RecipeDTO, 0, len(parsed))
	for _, id := range parsed {
		rec, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, apprecipe.ToDTO(rec))
	}
	return out, nil
}

func buildPrompt(favorites, catalog []*recipe.Recipe) string {
	catalogJSON := marshalCatalog(catalog, len(favorites) == 0)

	if len(favorites) > 0 {
		favoriteInfo := make([]favoriteEntry, 0, len(favorites))
		for _, rec := range favorites {
			favoriteInfo = append(favoriteInfo, favoriteEntry{
				Title:          rec.Title(),
				Country:        rec.Country(),
				MainIngredient: rec.MainIngredient(),
				Allergens:      allergensOrEmpty(rec),
			})
		}
		favoritesJSON, _ := json.MarshalIndent(favoriteInfo, "", "  ")

		return fmt.Sprintf(`You are a professional chef AI assistant. Based on the user's favorite recipes, recommend %d similar recipes from the available recipe database.

### User's Favorite Recipes:
%s

### Available Recipes Database:
%s

### Task:
Analyze the user's preferences based on their favorite recipes (cuisine types, ingredients, flavors) and recommend %d recipes from the available database that match their taste profile.

### Response Format:
Return ONLY a JSON array with exactly %d recipe IDs in this format:
["recipe_id_1", "recipe_id_2", "recipe_id_3"]

### Requirements:
- Select recipes that share similar characteristics with the user's favorites
- Consider cuisine type, main ingredients, and flavor profiles
- Avoid recommending recipes the user has already favorited
- Return only the recipe IDs as a JSON array, no additional text or explanation`,
			recommendationCount, favoritesJSON, catalogJSON,
			recommendationCount, recommendationCount)
	}

	return fmt.Sprintf(`You are a professional chef AI assistant. Recommend %d diverse and popular recipes from the available recipe database for a new user.

### Available Recipes Database:
%s

### Task:
Select %d diverse recipes that represent different cuisines and cooking styles. Choose recipes that are:
- From different countries/cuisines
- Use different main ingredients
- Have good ratings
- Offer variety in cooking techniques and flavors

### Response Format:
Return ONLY a JSON array with exactly %d recipe IDs in this format:
["recipe_id_1", "recipe_id_2", "recipe_id_3"]

### Requirements:
- Select recipes from different countries if possible
- Choose recipes with different main ingredients
- Return only the recipe IDs as a JSON array, no additional text or explanation`,
		recommendationCount, catalogJSON, recommendationCount, recommendationCount)
}

func marshalCatalog(catalog []*recipe.Recipe, includeRating bool) []byte {
	entries := make([]catalogEntry, 0, len(catalog))
	for _, rec := range catalog {
		entry := catalogEntry{
			ID:             rec.ID().String(),
			Title:          rec.Title(),
			Country:        rec.Country(),
			MainIngredient: rec.MainIngredient(),
			Allergens:      allergensOrEmpty(rec),
			Description:    rec.Description(),
		}
		if includeRating {
			entry.Rating = rec.Rating()
		}
		entries = append(entries, entry)
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return out
}

func allergensOrEmpty(rec *recipe.Recipe) []string {
	if a := rec.Allergens(); a != nil {
		return a
	}
	return []string{}
}

// parseIDList extracts a JSON string array from generator output. Three
// attempts, in order: the first bracketed slice of the text, a fenced
// ```json block, then the trimmed text as raw JSON.
func parseIDList(raw string) ([]string, error) {
	if match := bracketPattern.FindStringSubmatch(raw); match != nil {
		return decodeIDArray("[" + match[1] + "]")
	}
	if match := fencedPattern.FindStringSubmatch(raw); match != nil {
		return decodeIDArray(match[1])
	}
	return decodeIDArray(strings.TrimSpace(raw))
}

func decodeIDArray(payload string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(payload), &ids); err != nil {
		return nil, fmt.Errorf("decode id array: %w", err)
	}
	return ids, nil
}
