package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mealhow/mealhow-api/internal/data/pgxutil"
	"github.com/mealhow/mealhow-api/internal/domain/model"
	apperrors "github.com/mealhow/mealhow-api/internal/errors"
)

const shoppingListColumns = `id, user_id, name, status, created_at, deleted_at`

// ShoppingListRepo provides database operations for shopping lists. Lists are
// created by the generation worker; the API reads, counts and soft-deletes
// them by owner.
type ShoppingListRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewShoppingListRepo creates a new ShoppingListRepo with real time provider.
func NewShoppingListRepo(db *sql.DB) *ShoppingListRepo {
	return &ShoppingListRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewShoppingListRepoWithTimeProvider creates a ShoppingListRepo with a custom
// time provider (useful for tests).
func NewShoppingListRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ShoppingListRepo {
	return &ShoppingListRepo{DB: db, timeProvider: tp}
}

// FindByOwnerAndStatus returns the newest non-deleted list for the owner in
// the given status, or nil when none exists.
func (r *ShoppingListRepo) FindByOwnerAndStatus(
	ctx context.Context,
	userID string,
	status model.JobStatus,
) (*model.ShoppingList, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM shopping_lists
		WHERE user_id = $1 AND status = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`, shoppingListColumns)
	return r.queryOne(ctx, query, userID, string(status))
}

// FindResolvedByName returns the list created for the named generation request
// once its status has left in_progress, or nil while still pending.
func (r *ShoppingListRepo) FindResolvedByName(ctx context.Context, userID, name string) (*model.ShoppingList, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM shopping_lists
		WHERE user_id = $1 AND name = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`, shoppingListColumns)
	list, err := r.queryOne(ctx, query, userID, name)
	if err != nil || list == nil {
		return nil, err
	}
	if !list.Status.Resolved() {
		return nil, nil
	}
	return list, nil
}

// List returns the owner's non-deleted lists, newest first, with item counts.
func (r *ShoppingListRepo) List(ctx context.Context, userID string) ([]*model.ShoppingList, error) {
	var out []*model.ShoppingList
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, fmt.Sprintf(`
			SELECT %s FROM shopping_lists
			WHERE user_id = $1 AND deleted_at IS NULL
			ORDER BY created_at DESC`, shoppingListColumns), userID)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		lists, collectErr := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.ShoppingList])
		if collectErr != nil {
			return collectErr
		}

		for _, list := range lists {
			count := 0
			if countErr := conn.QueryRow(ctx,
				`SELECT count(*) FROM shopping_list_items WHERE shopping_list_id = $1`,
				list.ID,
			).Scan(&count); countErr != nil {
				return countErr
			}
			list.TotalItems = count
		}
		out = lists
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// GetByID returns the owner's list with its items, or a NotFound error.
func (r *ShoppingListRepo) GetByID(ctx context.Context, userID, listID string) (*model.ShoppingList, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM shopping_lists
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`, shoppingListColumns)
	list, err := r.queryOne(ctx, query, userID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, apperrors.NotFound("Shopping list not found")
	}

	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, `
			SELECT name, category, quantity, marked
			FROM shopping_list_items
			WHERE shopping_list_id = $1
			ORDER BY position`, listID)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		items, collectErr := pgx.CollectRows(rows, pgx.RowToStructByName[model.ShoppingListItem])
		if collectErr != nil {
			return collectErr
		}
		list.Items = items
		list.TotalItems = len(items)
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return list, nil
}

// SoftDelete marks the owner's list as deleted without removing rows.
func (r *ShoppingListRepo) SoftDelete(ctx context.Context, userID, listID string) error {
	deletedAt := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, `
			UPDATE shopping_lists SET deleted_at = $1
			WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL`,
			deletedAt, listID, userID)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("Shopping list not found")
		}
		return nil
	})
	return apperrors.MapDBError(err)
}

// LinkedMealIDs returns the ids of the meals the list was generated from.
func (r *ShoppingListRepo) LinkedMealIDs(ctx context.Context, userID, listID string) ([]string, error) {
	// Ownership check first so a foreign list id reads as not-found.
	if _, err := r.GetByID(ctx, userID, listID); err != nil {
		return nil, err
	}

	var ids []string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx,
			`SELECT meal_id FROM shopping_list_meals WHERE shopping_list_id = $1`, listID)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		collected, collectErr := pgx.CollectRows(rows, pgx.RowTo[string])
		if collectErr != nil {
			return collectErr
		}
		ids = collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return ids, nil
}

func (r *ShoppingListRepo) queryOne(ctx context.Context, query string, args ...any) (*model.ShoppingList, error) {
	var out *model.ShoppingList
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, query, args...)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		list, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ShoppingList])
		if collectErr != nil {
			return collectErr
		}
		out = &list
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}
