package db

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	MaxNameLength = 100
	MaxNickLength = 32
	MaxTechLength = 32

	dateLayout = "2006-01-02"
)

// ErrInvalidInput is matched by every error returned from the constructors in
// this file.
var ErrInvalidInput = errors.New("invalid input")

type LengthError struct {
	Field string
	Max   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s must not exceed %d characters", e.Field, e.Max)
}

func (e *LengthError) Is(target error) bool {
	return target == ErrInvalidInput
}

// PersonName, Nick and Tech can only be built through their constructors, so
// holding one means the length bound was checked.
type PersonName struct{ value string }

type Nick struct{ value string }

type Tech struct{ value string }

func NewPersonName(s string) (PersonName, error) {
	if err := checkLength("nome", s, MaxNameLength); err != nil {
		return PersonName{}, err
	}
	return PersonName{value: s}, nil
}

func NewNick(s string) (Nick, error) {
	if err := checkLength("apelido", s, MaxNickLength); err != nil {
		return Nick{}, err
	}
	return Nick{value: s}, nil
}

func NewTech(s string) (Tech, error) {
	if err := checkLength("stack", s, MaxTechLength); err != nil {
		return Tech{}, err
	}
	return Tech{value: s}, nil
}

func (n PersonName) String() string { return n.value }
func (n Nick) String() string       { return n.value }
func (t Tech) String() string       { return t.value }

func checkLength(field, s string, max int) error {
	if utf8.RuneCountInString(s) > max {
		return &LengthError{Field: field, Max: max}
	}
	return nil
}

// Date is a calendar date without time of day or zone.
type Date struct {
	time.Time
}

func NewDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: nascimento %q is not a YYYY-MM-DD date", ErrInvalidInput, s)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: nascimento must be a string", ErrInvalidInput)
	}
	parsed, err := NewDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
