package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// Querier lo que los repositorios necesitan de una conexión: lo cumplen *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

// isForeignKeyViolation referencia inexistente o registro aún referenciado (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// fkErr la referencia rota se reporta como conflicto con el registro relacionado.
func fkErr(kind entity.Kind, err error) error {
	var pgErr *pgconn.PgError
	errors.As(err, &pgErr)
	return fmt.Errorf("%w: %s viola la referencia %s", domain.ErrConflict, kind, pgErr.ConstraintName)
}

// insertErr traduce el error de un INSERT.
func insertErr(kind entity.Kind, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s ya existe", domain.ErrDuplicate, kind)
	}
	if isForeignKeyViolation(err) {
		return fkErr(kind, err)
	}
	return fmt.Errorf("insert %s: %w", kind, err)
}

// casErr traduce el resultado de un UPDATE condicionado a updated_at: sin filas afectadas es conflicto.
func casErr(kind entity.Kind, id string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s ya existe", domain.ErrDuplicate, kind)
		}
		if isForeignKeyViolation(err) {
			return fkErr(kind, err)
		}
		return fmt.Errorf("update %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s modificado o eliminado concurrentemente", domain.ErrConflict, kind, id)
	}
	return nil
}

// deleteErr sin filas afectadas es NotFound.
func deleteErr(kind entity.Kind, id string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		if isForeignKeyViolation(err) {
			return fkErr(kind, err)
		}
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.NotFound(kind, id)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func encodeItems(items []entity.LineItem) ([]byte, error) {
	if items == nil {
		items = []entity.LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("codificar items: %w", err)
	}
	return b, nil
}

func decodeItems(raw []byte) ([]entity.LineItem, error) {
	var items []entity.LineItem
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decodificar items: %w", err)
	}
	return items, nil
}

// where arma condiciones con placeholders numerados.
type where struct {
	conds []string
	args  []any
}

func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

// eq añade "col = valor" si valor no está vacío.
func (w *where) eq(col, v string) {
	if v == "" {
		return
	}
	w.conds = append(w.conds, col+" = "+w.arg(v))
}

func (w *where) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page añade orden (más recientes primero) y paginación.
func (w *where) page(f repository.Filter) string {
	limit, offset := f.Page()
	return " ORDER BY created_at DESC, id DESC LIMIT " + w.arg(limit) + " OFFSET " + w.arg(offset)
}

// collect recorre rows aplicando scan a cada fila.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()
	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// one ejecuta scan sobre una fila; pgx.ErrNoRows se traduce en (nil, nil).
func one[T any](row pgx.Row, scan func(pgx.Row) (*T, error)) (*T, error) {
	v, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}
