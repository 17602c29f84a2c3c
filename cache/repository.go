package cache

import (
	"context"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"people/db"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	idPrefix   = "id::"
	nickPrefix = "apelido::"
)

var taken = []byte{1}

// Repository caches people by id and remembers taken nicks. People are never
// updated, so a cached entry only goes stale if the row is removed out of
// band.
type Repository struct {
	next  db.Repository
	store Store
}

func NewRepository(next db.Repository, store Store) *Repository {
	return &Repository{next: next, store: store}
}

func (r *Repository) Insert(ctx context.Context, person db.NewPerson) (db.Person, error) {
	nick := person.Nick.String()
	if _, found := r.store.Get(ctx, nickPrefix+nick); found {
		return db.Person{}, &db.NickTakenError{Nick: nick}
	}

	saved, err := r.next.Insert(ctx, person)
	if err != nil {
		return db.Person{}, err
	}

	r.remember(ctx, saved)
	return saved, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*db.Person, error) {
	if b, found := r.store.Get(ctx, idPrefix+id.String()); found {
		var person db.Person
		if err := json.Unmarshal(b, &person); err == nil {
			return &person, nil
		}
	}

	person, err := r.next.FindByID(ctx, id)
	if err != nil || person == nil {
		return person, err
	}

	r.remember(ctx, *person)
	return person, nil
}

func (r *Repository) Search(ctx context.Context, term string) ([]db.Person, error) {
	return r.next.Search(ctx, term)
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.next.Count(ctx)
}

func (r *Repository) remember(ctx context.Context, person db.Person) {
	b, err := json.Marshal(person)
	if err != nil {
		return
	}
	r.store.Set(ctx, idPrefix+person.ID.String(), b)
	r.store.Set(ctx, nickPrefix+person.Nick, taken)
}
