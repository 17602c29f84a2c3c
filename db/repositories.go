package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"
	nickConstraint  = "people_nick_key"

	DefaultQueryTimeout = 2 * time.Second
)

const (
	insertPersonSQL = `insert into people (id, name, nick, birth_date, stack, search)
		values ($1, $2, $3, $4, $5::varchar[], $6)
		returning id, name, nick, birth_date, stack`

	findPersonSQL = `select id, name, nick, birth_date, stack from people where id = $1`

	searchPeopleSQL = `select id, name, nick, birth_date, stack
		from people
		where search ilike '%' || $1 || '%'
		order by id
		limit $2`

	countPeopleSQL = `select count(*) from people`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostgresRepository struct {
	conn    PgxIface
	timeout time.Duration
}

// NewPostgresRepository runs every query under timeout; zero selects
// DefaultQueryTimeout.
func NewPostgresRepository(conn PgxIface, timeout time.Duration) *PostgresRepository {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &PostgresRepository{conn: conn, timeout: timeout}
}

func (r *PostgresRepository) Insert(ctx context.Context, person NewPerson) (Person, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Person{}, fmt.Errorf("generate id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stack := person.StackStrings()
	row := r.conn.QueryRow(ctx, insertPersonSQL,
		id,
		person.Name.String(),
		person.Nick.String(),
		person.BirthDate.Time,
		stack,
		searchText(person.Name.String(), person.Nick.String(), stack))

	saved, err := scanPerson(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == nickConstraint {
			return Person{}, &NickTakenError{Nick: person.Nick.String()}
		}
		return Person{}, fmt.Errorf("insert person: %w", err)
	}

	return saved, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	person, err := scanPerson(r.conn.QueryRow(ctx, findPersonSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find person %s: %w", id, err)
	}

	return &person, nil
}

func (r *PostgresRepository) Search(ctx context.Context, term string) ([]Person, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.conn.Query(ctx, searchPeopleSQL, likeEscaper.Replace(strings.ToLower(term)), SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search people: %w", err)
	}
	defer rows.Close()

	people := []Person{}
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search people: %w", err)
	}

	return people, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	if err := r.conn.QueryRow(ctx, countPeopleSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (Person, error) {
	var (
		person    Person
		birthDate time.Time
	)

	err := row.Scan(
		&person.ID,
		&person.Name,
		&person.Nick,
		&birthDate,
		&person.Stack)
	if err != nil {
		return Person{}, err
	}

	person.BirthDate = DateOf(birthDate)
	return person, nil
}
