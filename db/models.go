package db

import "github.com/google/uuid"

type Person struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"nome"`
	Nick      string    `json:"apelido"`
	BirthDate Date      `json:"nascimento"`
	Stack     []string  `json:"stack"`
}

// NewPerson is a validated creation request. A nil Stack means the client
// sent no stack at all.
type NewPerson struct {
	Name      PersonName
	Nick      Nick
	BirthDate Date
	Stack     []Tech
}

func (n NewPerson) StackStrings() []string {
	if n.Stack == nil {
		return nil
	}
	stack := make([]string, len(n.Stack))
	for i, tech := range n.Stack {
		stack[i] = tech.String()
	}
	return stack
}

func (n NewPerson) Person(id uuid.UUID) Person {
	return Person{
		ID:        id,
		Name:      n.Name.String(),
		Nick:      n.Nick.String(),
		BirthDate: n.BirthDate,
		Stack:     n.StackStrings(),
	}
}
