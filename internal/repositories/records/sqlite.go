package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/shelfsync/internal/dbx"
	"github.com/dmitrijs2005/shelfsync/internal/models"
)

// SQLiteRepository implements Repository over a sqlite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository bound to the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const upsertQuery = `INSERT INTO records (id, title, author, progress, font_size, last_modified, content, cover)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title,
			author = excluded.author,
			progress = excluded.progress,
			font_size = excluded.font_size,
			last_modified = excluded.last_modified,
			content = excluded.content,
			cover = excluded.cover
`

// Put upserts a record by id.
func (r *SQLiteRepository) Put(ctx context.Context, rec models.Record) error {
	if err := putOne(ctx, r.db, rec); err != nil {
		return err
	}
	return nil
}

// BulkPut upserts all records inside one transaction.
func (r *SQLiteRepository) BulkPut(ctx context.Context, recs []models.Record) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, rec := range recs {
			if err := putOne(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func putOne(ctx context.Context, db dbx.DBTX, rec models.Record) error {
	_, err := db.ExecContext(ctx, upsertQuery,
		rec.ID, rec.Title, rec.Author, rec.Progress, rec.FontSize, rec.LastModified, rec.Content, rec.Cover)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// LoadAll lists every record, payloads included.
func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]models.Record, error) {
	query := `SELECT id, title, author, progress, font_size, last_modified, content, cover FROM records`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		var item models.Record
		if err := rows.Scan(&item.ID, &item.Title, &item.Author, &item.Progress,
			&item.FontSize, &item.LastModified, &item.Content, &item.Cover); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a record by id. Deleting an absent id is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Clear removes every record.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records`)
	if err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}
