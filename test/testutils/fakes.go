// Package testutils provides in-memory fakes and factories shared by the
// service and handler tests.
package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cookease/api/internal/domain/ingredient"
	"github.com/cookease/api/internal/domain/recipe"
	"github.com/cookease/api/internal/domain/user"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/google/uuid"
)

// InMemoryUserRepository is a map-backed outbound.UserRepository. All
// operations share one lock, which also makes Transaction a faithful stand-in
// for the serialized reconciliation path.
type InMemoryUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User

	// FindByEmailErr, when set, is returned by FindByEmail in place of a
	// lookup, simulating an infrastructure failure.
	FindByEmailErr error
}

// NewInMemoryUserRepository creates an empty user repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[uuid.UUID]*user.User)}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email() == u.Email() {
			return user.ErrEmailTaken
		}
		if existing.Username() == u.Username() {
			return user.ErrUsernameTaken
		}
	}
	r.users[u.ID()] = u
	return nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; !ok {
		return user.ErrUserNotFound
	}
	r.users[u.ID()] = u
	return nil
}

func (r *InMemoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *InMemoryUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindByEmailErr != nil {
		return nil, r.FindByEmailErr
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *InMemoryUserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *InMemoryUserRepository) UsernameTakenByOther(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username() == username && u.ID() != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryUserRepository) Transaction(ctx context.Context, fn func(repo outbound.UserRepository) error) error {
	// The fake is already serialized per operation; run the body against the
	// same repository.
	return fn(r)
}

func (r *InMemoryUserRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	if !u.IsFavorite(recipeID) {
		u.ToggleFavorite(recipeID)
	}
	return nil
}

func (r *InMemoryUserRepository) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	if u.IsFavorite(recipeID) {
		u.ToggleFavorite(recipeID)
	}
	return nil
}

func (r *InMemoryUserRepository) Favorites(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u.FavoriteRecipeIDs(), nil
}

func (r *InMemoryUserRepository) UpsertCartLine(ctx context.Context, userID uuid.UUID, line user.CartLine) (user.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return user.CartLine{}, user.ErrUserNotFound
	}
	return u.AddCartLine(line)
}

func (r *InMemoryUserRepository) SetCartLineQuantity(ctx context.Context, userID uuid.UUID, ingredientID string, quantity int) (user.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return user.CartLine{}, user.ErrUserNotFound
	}
	return u.UpdateCartLine(ingredientID, quantity)
}

func (r *InMemoryUserRepository) DeleteCartLine(ctx context.Context, userID uuid.UUID, ingredientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	return u.RemoveCartLine(ingredientID)
}

func (r *InMemoryUserRepository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.ClearCart()
	return nil
}

func (r *InMemoryUserRepository) CartLines(ctx context.Context, userID uuid.UUID) ([]user.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u.Cart(), nil
}

// Count returns the number of stored users.
func (r *InMemoryUserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// CountByEmail returns how many stored users carry the email. Used to assert
// the merge-uniqueness invariant.
func (r *InMemoryUserRepository) CountByEmail(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.Email() == strings.ToLower(email) {
			n++
		}
	}
	return n
}

var _ outbound.UserRepository = (*InMemoryUserRepository)(nil)

// InMemoryRecipeRepository is a map-backed outbound.RecipeRepository that
// preserves insertion order for FindAll.
type InMemoryRecipeRepository struct {
	mu      sync.Mutex
	recipes map[uuid.UUID]*recipe.Recipe
	order   []uuid.UUID
}

// NewInMemoryRecipeRepository creates an empty recipe repository.
func NewInMemoryRecipeRepository() *InMemoryRecipeRepository {
	return &InMemoryRecipeRepository{recipes: make(map[uuid.UUID]*recipe.Recipe)}
}

func (r *InMemoryRecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipes[rec.ID()] = rec
	r.order = append(r.order, rec.ID())
	return nil
}

func (r *InMemoryRecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recipes[rec.ID()]; !ok {
		return recipe.ErrRecipeNotFound
	}
	r.recipes[rec.ID()] = rec
	return nil
}

func (r *InMemoryRecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recipes[id]; !ok {
		return recipe.ErrRecipeNotFound
	}
	delete(r.recipes, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *InMemoryRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok {
		return nil, recipe.ErrRecipeNotFound
	}
	return rec, nil
}

func (r *InMemoryRecipeRepository) FindAll(ctx context.Context) ([]*recipe.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*recipe.Recipe, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.recipes[id])
	}
	return out, nil
}

func (r *InMemoryRecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.recipes[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *InMemoryRecipeRepository) Filter(ctx context.Context, filter outbound.RecipeFilter) ([]*recipe.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*recipe.Recipe
	for _, id := range r.order {
		rec := r.recipes[id]
		if len(filter.Countries) > 0 && !containsFold(filter.Countries, rec.Country()) {
			continue
		}
		if len(filter.MainIngredients) > 0 && !containsFold(filter.MainIngredients, rec.MainIngredient()) {
			continue
		}
		if len(filter.ExcludeAllergens) > 0 && rec.ContainsAnyAllergen(filter.ExcludeAllergens) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating() > out[j].Rating() })
	return out, nil
}

func (r *InMemoryRecipeRepository) Search(ctx context.Context, query string, offset, limit int) ([]*recipe.Recipe, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var matches []*recipe.Recipe
	for _, id := range r.order {
		rec := r.recipes[id]
		if strings.Contains(strings.ToLower(rec.Title()), q) ||
			strings.Contains(strings.ToLower(rec.Description()), q) {
			matches = append(matches, rec)
		}
	}
	total := int64(len(matches))
	if offset >= len(matches) {
		return nil, total, nil
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, total, nil
}

func (r *InMemoryRecipeRepository) FilterOptions(ctx context.Context) (*outbound.FilterOptions, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	countries := map[string]bool{}
	mains := map[string]bool{}
	allergens := map[string]bool{}
	for _, rec := range r.recipes {
		countries[rec.Country()] = true
		mains[rec.MainIngredient()] = true
		for _, a := range rec.Allergens() {
			allergens[a] = true
		}
	}
	return &outbound.FilterOptions{
		Countries:       sortedKeys(countries),
		MainIngredients: sortedKeys(mains),
		Allergens:       sortedKeys(allergens),
	}, nil
}

var _ outbound.RecipeRepository = (*InMemoryRecipeRepository)(nil)

// InMemoryIngredientRepository is a map-backed outbound.IngredientRepository.
type InMemoryIngredientRepository struct {
	mu          sync.Mutex
	ingredients map[string]*ingredient.Ingredient
	order       []string
}

// NewInMemoryIngredientRepository creates an empty ingredient repository.
func NewInMemoryIngredientRepository() *InMemoryIngredientRepository {
	return &InMemoryIngredientRepository{ingredients: make(map[string]*ingredient.Ingredient)}
}

func (r *InMemoryIngredientRepository) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ingredients[ing.ID]; !ok {
		r.order = append(r.order, ing.ID)
	}
	r.ingredients[ing.ID] = ing
	return nil
}

func (r *InMemoryIngredientRepository) FindByID(ctx context.Context, id string) (*ingredient.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ing, ok := r.ingredients[id]
	if !ok {
		return nil, ingredient.ErrIngredientNotFound
	}
	return ing, nil
}

func (r *InMemoryIngredientRepository) FindAll(ctx context.Context) ([]*ingredient.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ingredient.Ingredient, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.ingredients[id])
	}
	return out, nil
}

var _ outbound.IngredientRepository = (*InMemoryIngredientRepository)(nil)

// InMemoryCache is a map-backed outbound.CacheRepository. TTLs are honored
// lazily on read.
type InMemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryCache creates an empty cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]cacheEntry)}
}

// ErrCacheMiss is returned by Get for absent or expired keys.
var ErrCacheMiss = errCacheMiss{}

type errCacheMiss struct{}

func (errCacheMiss) Error() string { return "cache miss" }

func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return nil, ErrCacheMiss
	}
	return entry.value, nil
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

var _ outbound.CacheRepository = (*InMemoryCache)(nil)

// StubGenerator is an outbound.TextGenerator returning canned output.
type StubGenerator struct {
	Response string
	Err      error
	// Prompts records every prompt received, for assertions.
	Prompts []string
}

func (g *StubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Response, nil
}

var _ outbound.TextGenerator = (*StubGenerator)(nil)

// StubOAuthProvider is an outbound.OAuthProvider returning a fixed profile.
type StubOAuthProvider struct {
	Profile *outbound.OAuthProfile
	Err     error
}

func (p *StubOAuthProvider) LoginURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *StubOAuthProvider) Exchange(ctx context.Context, code string) (*outbound.OAuthProfile, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Profile, nil
}

var _ outbound.OAuthProvider = (*StubOAuthProvider)(nil)

// MakeRecipe builds a valid recipe for tests.
func MakeRecipe(title, country, mainIngredient string, rating float64, allergens ...string) *recipe.Recipe {
	rec, err := recipe.NewRecipe(title, "/images/"+strings.ToLower(title)+".jpg",
		title+" description", country, mainIngredient, "30 min", "Cook it.", rating)
	if err != nil {
		panic(err)
	}
	rec.SetAllergens(allergens)
	return rec
}

// MakeIngredient builds a valid catalog ingredient for tests.
func MakeIngredient(id, name string, price float64, unit string) *ingredient.Ingredient {
	return &ingredient.Ingredient{
		ID:    id,
		Name:  name,
		Price: price,
		Unit:  unit,
		Sell:  true,
	}
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
