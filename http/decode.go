package handler

import (
	"fmt"

	"people/db"
)

// personRequest is the wire shape of a create request. Pointers tell a
// missing or null field apart from a present one.
type personRequest struct {
	Name      *string  `json:"nome" validate:"required,min=1"`
	Nick      *string  `json:"apelido" validate:"required,min=1"`
	BirthDate *string  `json:"nascimento" validate:"required"`
	Stack     []string `json:"stack" validate:"omitempty,dive,required"`
}

// decodeNewPerson parses body and converts every field into its validated
// type. Any error it returns is the client's fault.
func (h *Handler) decodeNewPerson(body []byte) (db.NewPerson, error) {
	var req personRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return db.NewPerson{}, fmt.Errorf("%w: malformed body: %v", db.ErrInvalidInput, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return db.NewPerson{}, fmt.Errorf("%w: %v", db.ErrInvalidInput, err)
	}

	name, err := db.NewPersonName(*req.Name)
	if err != nil {
		return db.NewPerson{}, err
	}
	nick, err := db.NewNick(*req.Nick)
	if err != nil {
		return db.NewPerson{}, err
	}
	birthDate, err := db.NewDate(*req.BirthDate)
	if err != nil {
		return db.NewPerson{}, err
	}

	var stack []db.Tech
	if req.Stack != nil {
		stack = make([]db.Tech, 0, len(req.Stack))
		for _, s := range req.Stack {
			tech, err := db.NewTech(s)
			if err != nil {
				return db.NewPerson{}, err
			}
			stack = append(stack, tech)
		}
	}

	return db.NewPerson{
		Name:      name,
		Nick:      nick,
		BirthDate: birthDate,
		Stack:     stack,
	}, nil
}
