package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var personColumns = []string{"id", "name", "nick", "birth_date", "stack"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func mustNewPerson(t *testing.T, name, nick, birthDate string, stack ...string) NewPerson {
	t.Helper()

	n, err := NewPersonName(name)
	require.NoError(t, err)
	k, err := NewNick(nick)
	require.NoError(t, err)
	d, err := NewDate(birthDate)
	require.NoError(t, err)

	person := NewPerson{Name: n, Nick: k, BirthDate: d}
	if stack != nil {
		person.Stack = []Tech{}
		for _, s := range stack {
			tech, err := NewTech(s)
			require.NoError(t, err)
			person.Stack = append(person.Stack, tech)
		}
	}
	return person
}

func TestGetPersonById(t *testing.T) {
	mock := newMock(t)
	id := uuid.MustParse("018b2f19-e79e-7d6a-a56d-29feb6211b04")
	birth := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`^select (.+) from people where id = (.+)$`).
		WithArgs(id).
		WillReturnRows(mock.NewRows(personColumns).
			AddRow(id.String(), "José Roberto", "jose", birth, []string{"C#", "Node"}))

	person, err := NewPostgresRepository(mock, 0).FindByID(context.Background(), id)

	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, id, person.ID)
	assert.Equal(t, "José Roberto", person.Name)
	assert.Equal(t, "jose", person.Nick)
	assert.Equal(t, "2000-01-01", person.BirthDate.String())
	assert.Equal(t, []string{"C#", "Node"}, person.Stack)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPersonById_whenMissing_returnsNil(t *testing.T) {
	mock := newMock(t)
	id := uuid.MustParse("018b2f19-e79e-7d6a-a56d-29feb6211b04")

	mock.ExpectQuery(`^select (.+) from people where id = (.+)$`).
		WithArgs(id).
		WillReturnRows(mock.NewRows(personColumns))

	person, err := NewPostgresRepository(mock, 0).FindByID(context.Background(), id)

	require.NoError(t, err)
	assert.Nil(t, person)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPersonById_whenQueryFails_returnsError(t *testing.T) {
	mock := newMock(t)
	id := uuid.MustParse("018b2f19-e79e-7d6a-a56d-29feb6211b04")
	failure := errors.New("connection reset")

	mock.ExpectQuery(`^select (.+) from people where id = (.+)$`).
		WithArgs(id).
		WillReturnError(failure)

	person, err := NewPostgresRepository(mock, 0).FindByID(context.Background(), id)

	assert.Nil(t, person)
	assert.ErrorIs(t, err, failure)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestSavePerson(t *testing.T) {
	mock := newMock(t)
	person := mustNewPerson(t, "José Roberto", "jose", "2000-10-01", "C#", "Node")
	returned := uuid.MustParse("018b2f19-e79e-7d6a-a56d-29feb6211b04")

	mock.ExpectQuery(`^insert into people (.+) returning id, name, nick, birth_date, stack$`).
		WithArgs(pgxmock.AnyArg(), "José Roberto", "jose", person.BirthDate.Time,
			[]string{"C#", "Node"}, "josé roberto jose c# node").
		WillReturnRows(mock.NewRows(personColumns).
			AddRow(returned.String(), "José Roberto", "jose", person.BirthDate.Time, []string{"C#", "Node"}))

	saved, err := NewPostgresRepository(mock, 0).Insert(context.Background(), person)

	require.NoError(t, err)
	assert.Equal(t, returned, saved.ID)
	assert.Equal(t, person.Person(returned), saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePerson_whenNickTaken_returnsConflict(t *testing.T) {
	mock := newMock(t)
	person := mustNewPerson(t, "José Roberto", "jose", "2000-10-01")

	mock.ExpectQuery(`^insert into people`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "people_nick_key"})

	_, err := NewPostgresRepository(mock, 0).Insert(context.Background(), person)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	var nickErr *NickTakenError
	require.ErrorAs(t, err, &nickErr)
	assert.Equal(t, "jose", nickErr.Nick)
}

func TestSavePerson_whenOtherDatabaseError_returnsTransportError(t *testing.T) {
	mock := newMock(t)
	person := mustNewPerson(t, "José Roberto", "jose", "2000-10-01")

	mock.ExpectQuery(`^insert into people`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "57P01"})

	_, err := NewPostgresRepository(mock, 0).Insert(context.Background(), person)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestFindPeople(t *testing.T) {
	mock := newMock(t)
	first := uuid.MustParse("018b2f19-e79e-7d6a-a56d-29feb6211b04")
	second := uuid.MustParse("018b2f19-e79f-7d6a-a56d-29feb6211b05")
	birth := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`^select (.+) from people where search ilike (.+) order by id limit (.+)$`).
		WithArgs("node", SearchLimit).
		WillReturnRows(mock.NewRows(personColumns).
			AddRow(first.String(), "Ana", "ana", birth, []string{"Node"}).
			AddRow(second.String(), "Nodeir", "nodeir", birth, nil))

	people, err := NewPostgresRepository(mock, 0).Search(context.Background(), "NoDe")

	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, first, people[0].ID)
	assert.Equal(t, second, people[1].ID)
	assert.Nil(t, people[1].Stack)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPeople_whenNothingMatches_returnsEmptySlice(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`^select (.+) from people where search ilike`).
		WithArgs("nobody", SearchLimit).
		WillReturnRows(mock.NewRows(personColumns))

	people, err := NewPostgresRepository(mock, 0).Search(context.Background(), "nobody")

	require.NoError(t, err)
	assert.NotNil(t, people)
	assert.Empty(t, people)
}

func TestFindPeople_escapesLikeWildcards(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`^select (.+) from people where search ilike`).
		WithArgs(`50\%\_off\\`, SearchLimit).
		WillReturnRows(mock.NewRows(personColumns))

	_, err := NewPostgresRepository(mock, 0).Search(context.Background(), `50%_off\`)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountPeople(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`^select count\(\*\) from people$`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := NewPostgresRepository(mock, 0).Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountPeople_whenQueryFails_returnsError(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`^select count`).WillReturnError(errors.New("timeout"))

	_, err := NewPostgresRepository(mock, 0).Count(context.Background())

	assert.Error(t, err)
}
