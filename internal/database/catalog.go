package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// --- Ingredients ---

const createIngredient = `
INSERT INTO ingredients (name, base_unit)
VALUES ($1, $2)
RETURNING ingredient_id, name, base_unit, is_deleted
`

type CreateIngredientParams struct {
	Name     string
	BaseUnit string
}

func (q *Queries) CreateIngredient(ctx context.Context, arg CreateIngredientParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, createIngredient, arg.Name, arg.BaseUnit)
	var i Ingredient
	err := row.Scan(&i.IngredientID, &i.Name, &i.BaseUnit, &i.IsDeleted)
	return i, err
}

const getIngredient = `
SELECT ingredient_id, name, base_unit, is_deleted
FROM ingredients
WHERE ingredient_id = $1 AND is_deleted = FALSE
`

func (q *Queries) GetIngredient(ctx context.Context, ingredientID int64) (Ingredient, error) {
	row := q.db.QueryRow(ctx, getIngredient, ingredientID)
	var i Ingredient
	err := row.Scan(&i.IngredientID, &i.Name, &i.BaseUnit, &i.IsDeleted)
	return i, err
}

const listIngredients = `
SELECT ingredient_id, name, base_unit, is_deleted
FROM ingredients
WHERE is_deleted = FALSE
ORDER BY ingredient_id
LIMIT $1 OFFSET $2
`

type ListIngredientsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListIngredients(ctx context.Context, arg ListIngredientsParams) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx, listIngredients, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Ingredient
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.IngredientID, &i.Name, &i.BaseUnit, &i.IsDeleted); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateIngredient = `
UPDATE ingredients
SET name = $2, base_unit = $3
WHERE ingredient_id = $1 AND is_deleted = FALSE
RETURNING ingredient_id, name, base_unit, is_deleted
`

type UpdateIngredientParams struct {
	IngredientID int64
	Name         string
	BaseUnit     string
}

func (q *Queries) UpdateIngredient(ctx context.Context, arg UpdateIngredientParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, updateIngredient, arg.IngredientID, arg.Name, arg.BaseUnit)
	var i Ingredient
	err := row.Scan(&i.IngredientID, &i.Name, &i.BaseUnit, &i.IsDeleted)
	return i, err
}

const softDeleteIngredient = `
UPDATE ingredients
SET is_deleted = TRUE
WHERE ingredient_id = $1 AND is_deleted = FALSE
RETURNING ingredient_id
`

func (q *Queries) SoftDeleteIngredient(ctx context.Context, ingredientID int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteIngredient, ingredientID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

// --- Menu items ---

const createMenuItem = `
INSERT INTO menu_items (name, type, description, price, category, is_available)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING menu_item_id, name, type, description, price, category, is_available
`

type CreateMenuItemParams struct {
	Name        string
	Type        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	IsAvailable bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name, arg.Type, arg.Description, arg.Price, arg.Category, arg.IsAvailable)
	var m MenuItem
	err := row.Scan(&m.MenuItemID, &m.Name, &m.Type, &m.Description, &m.Price,
		&m.Category, &m.IsAvailable)
	return m, err
}

const getMenuItem = `
SELECT menu_item_id, name, type, description, price, category, is_available
FROM menu_items
WHERE menu_item_id = $1
`

func (q *Queries) GetMenuItem(ctx context.Context, menuItemID int64) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, menuItemID)
	var m MenuItem
	err := row.Scan(&m.MenuItemID, &m.Name, &m.Type, &m.Description, &m.Price,
		&m.Category, &m.IsAvailable)
	return m, err
}

const listMenuItems = `
SELECT menu_item_id, name, type, description, price, category, is_available
FROM menu_items
WHERE ($1::boolean IS NULL OR is_available = $1)
ORDER BY menu_item_id
LIMIT $2 OFFSET $3
`

type ListMenuItemsParams struct {
	Available pgtype.Bool
	Limit     int32
	Offset    int32
}

func (q *Queries) ListMenuItems(ctx context.Context, arg ListMenuItemsParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, arg.Available, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.MenuItemID, &m.Name, &m.Type, &m.Description, &m.Price,
			&m.Category, &m.IsAvailable); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const updateMenuItem = `
UPDATE menu_items
SET name = $2, type = $3, description = $4, price = $5, category = $6, is_available = $7
WHERE menu_item_id = $1
RETURNING menu_item_id, name, type, description, price, category, is_available
`

type UpdateMenuItemParams struct {
	MenuItemID  int64
	Name        string
	Type        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	IsAvailable bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.MenuItemID, arg.Name, arg.Type, arg.Description, arg.Price, arg.Category, arg.IsAvailable)
	var m MenuItem
	err := row.Scan(&m.MenuItemID, &m.Name, &m.Type, &m.Description, &m.Price,
		&m.Category, &m.IsAvailable)
	return m, err
}

const deleteMenuItem = `
DELETE FROM menu_items
WHERE menu_item_id = $1
RETURNING menu_item_id
`

func (q *Queries) DeleteMenuItem(ctx context.Context, menuItemID int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteMenuItem, menuItemID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

// --- Recipes ---

const createRecipe = `
INSERT INTO recipes (menu_item_id, ingredient_id, qty_per_unit)
VALUES ($1, $2, $3)
RETURNING recipe_id, menu_item_id, ingredient_id, qty_per_unit
`

type CreateRecipeParams struct {
	MenuItemID   int64
	IngredientID int64
	QtyPerUnit   pgtype.Numeric
}

func (q *Queries) CreateRecipe(ctx context.Context, arg CreateRecipeParams) (Recipe, error) {
	row := q.db.QueryRow(ctx, createRecipe, arg.MenuItemID, arg.IngredientID, arg.QtyPerUnit)
	var r Recipe
	err := row.Scan(&r.RecipeID, &r.MenuItemID, &r.IngredientID, &r.QtyPerUnit)
	return r, err
}

const getRecipe = `
SELECT recipe_id, menu_item_id, ingredient_id, qty_per_unit
FROM recipes
WHERE recipe_id = $1
`

func (q *Queries) GetRecipe(ctx context.Context, recipeID int64) (Recipe, error) {
	row := q.db.QueryRow(ctx, getRecipe, recipeID)
	var r Recipe
	err := row.Scan(&r.RecipeID, &r.MenuItemID, &r.IngredientID, &r.QtyPerUnit)
	return r, err
}

const listRecipesByMenuItem = `
SELECT recipe_id, menu_item_id, ingredient_id, qty_per_unit
FROM recipes
WHERE menu_item_id = $1
ORDER BY recipe_id
`

func (q *Queries) ListRecipesByMenuItem(ctx context.Context, menuItemID int64) ([]Recipe, error) {
	rows, err := q.db.Query(ctx, listRecipesByMenuItem, menuItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Recipe
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(&r.RecipeID, &r.MenuItemID, &r.IngredientID, &r.QtyPerUnit); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateRecipe = `
UPDATE recipes
SET qty_per_unit = $2
WHERE recipe_id = $1
RETURNING recipe_id, menu_item_id, ingredient_id, qty_per_unit
`

type UpdateRecipeParams struct {
	RecipeID   int64
	QtyPerUnit pgtype.Numeric
}

func (q *Queries) UpdateRecipe(ctx context.Context, arg UpdateRecipeParams) (Recipe, error) {
	row := q.db.QueryRow(ctx, updateRecipe, arg.RecipeID, arg.QtyPerUnit)
	var r Recipe
	err := row.Scan(&r.RecipeID, &r.MenuItemID, &r.IngredientID, &r.QtyPerUnit)
	return r, err
}

const deleteRecipe = `
DELETE FROM recipes
WHERE recipe_id = $1
RETURNING recipe_id
`

func (q *Queries) DeleteRecipe(ctx context.Context, recipeID int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteRecipe, recipeID)
	var id int64
	err := row.Scan(&id)
	return id, err
}
