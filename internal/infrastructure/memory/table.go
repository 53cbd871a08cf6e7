package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// table almacena copias de T indexadas por id. El llamador sostiene el lock del Store.
type table[T any] struct {
	kind    entity.Kind
	rows    map[string]record[T]
	seq     int64
	clone   func(T) T
	id      func(T) string
	unique  func(T) string // clave de negocio única ("" = sin restricción)
	version func(T) time.Time
}

type record[T any] struct {
	v   T
	seq int64
}

func newTable[T any](kind entity.Kind, id, unique func(T) string, version func(T) time.Time, clone func(T) T) *table[T] {
	return &table[T]{kind: kind, rows: make(map[string]record[T]), id: id, unique: unique, version: version, clone: clone}
}

func (t *table[T]) insert(v T) error {
	id := t.id(v)
	if _, ok := t.rows[id]; ok {
		return fmt.Errorf("%w: %s %s", domain.ErrDuplicate, t.kind, id)
	}
	if err := t.checkUnique(v); err != nil {
		return err
	}
	t.seq++
	t.rows[id] = record[T]{v: t.clone(v), seq: t.seq}
	return nil
}

func (t *table[T]) checkUnique(v T) error {
	if t.unique == nil {
		return nil
	}
	key := t.unique(v)
	if key == "" {
		return nil
	}
	for id, r := range t.rows {
		if id != t.id(v) && t.unique(r.v) == key {
			return fmt.Errorf("%w: %s %q", domain.ErrDuplicate, t.kind, key)
		}
	}
	return nil
}

// get devuelve una copia; ok=false si no existe.
func (t *table[T]) get(id string) (T, bool) {
	r, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(r.v), true
}

func (t *table[T]) find(match func(T) bool) (T, bool) {
	for _, r := range t.rows {
		if match(r.v) {
			return t.clone(r.v), true
		}
	}
	var zero T
	return zero, false
}

// list devuelve copias de las filas que cumplen match, de la más reciente a la más antigua.
func (t *table[T]) list(match func(T) bool, limit, offset int) []T {
	matched := make([]record[T], 0)
	for _, r := range t.rows {
		if match == nil || match(r.v) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
	if offset >= len(matched) {
		return []T{}
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	out := make([]T, 0, len(matched))
	for _, r := range matched {
		out = append(out, t.clone(r.v))
	}
	return out
}

// replace sustituye la fila; con expected no nulo aplica compare-and-swap sobre la versión.
func (t *table[T]) replace(v T, expected *time.Time) error {
	id := t.id(v)
	r, ok := t.rows[id]
	if !ok {
		return repository.NotFound(t.kind, id)
	}
	if expected != nil && !t.version(r.v).Equal(*expected) {
		return fmt.Errorf("%w: %s %s modificado por otra operación", domain.ErrConflict, t.kind, id)
	}
	if err := t.checkUnique(v); err != nil {
		return err
	}
	t.rows[id] = record[T]{v: t.clone(v), seq: r.seq}
	return nil
}

func (t *table[T]) remove(id string) error {
	if _, ok := t.rows[id]; !ok {
		return repository.NotFound(t.kind, id)
	}
	delete(t.rows, id)
	return nil
}
