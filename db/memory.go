package db

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memoryRecord struct {
	person Person
	search string
}

// MemoryRepository keeps people in process memory. Nothing survives a
// restart and nothing is shared between instances.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*memoryRecord
	byNick map[string]uuid.UUID
	// ordered by id, which is also creation order
	records []*memoryRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[uuid.UUID]*memoryRecord),
		byNick: make(map[string]uuid.UUID),
	}
}

func (r *MemoryRepository) Insert(_ context.Context, person NewPerson) (Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nick := person.Nick.String()
	if _, taken := r.byNick[nick]; taken {
		return Person{}, &NickTakenError{Nick: nick}
	}

	// generated under the lock so records stays sorted by id
	id, err := uuid.NewV7()
	if err != nil {
		return Person{}, fmt.Errorf("generate id: %w", err)
	}

	saved := person.Person(id)
	record := &memoryRecord{
		person: saved,
		search: searchText(saved.Name, saved.Nick, saved.Stack),
	}
	r.byID[id] = record
	r.byNick[saved.Nick] = id
	r.records = append(r.records, record)

	return clonePerson(saved), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	person := clonePerson(record.person)
	return &person, nil
}

func (r *MemoryRepository) Search(_ context.Context, term string) ([]Person, error) {
	needle := strings.ToLower(term)

	r.mu.RLock()
	defer r.mu.RUnlock()

	people := []Person{}
	for _, record := range r.records {
		if len(people) == SearchLimit {
			break
		}
		if strings.Contains(record.search, needle) {
			people = append(people, clonePerson(record.person))
		}
	}
	return people, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.records)), nil
}

func clonePerson(p Person) Person {
	p.Stack = slices.Clone(p.Stack)
	return p
}
