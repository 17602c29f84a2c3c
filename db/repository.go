package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SearchLimit caps the number of rows returned by Repository.Search.
const SearchLimit = 50

// ErrConflict is matched by errors reporting a uniqueness violation.
var ErrConflict = errors.New("conflict")

type NickTakenError struct {
	Nick string
}

func (e *NickTakenError) Error() string {
	return fmt.Sprintf("apelido %q already exists", e.Nick)
}

func (e *NickTakenError) Is(target error) bool {
	return target == ErrConflict
}

// Repository is the persistence contract for people.
//
// FindByID returns nil, nil when the id is unknown. Search matches term as a
// case-insensitive substring of the person's name, nick and stack, returning
// at most SearchLimit people in creation order. Errors other than
// *NickTakenError are transport failures.
type Repository interface {
	Insert(ctx context.Context, person NewPerson) (Person, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Person, error)
	Search(ctx context.Context, term string) ([]Person, error)
	Count(ctx context.Context) (int64, error)
}

// searchText is the text Search matches against, stored alongside each row.
func searchText(name, nick string, stack []string) string {
	return strings.ToLower(name + " " + nick + " " + strings.Join(stack, " "))
}
