package services

import (
	"fmt"
	"strings"
)

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("patient %q not found", e.ID)
}

type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("patient %q already exists", e.ID)
}

// InvalidFieldError is returned when a sort field is outside Valid.
type InvalidFieldError struct {
	Field string
	Valid []string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid sortby %q, select from [%s]", e.Field, strings.Join(e.Valid, ", "))
}

type InvalidDirectionError struct {
	Direction string
	Valid     []string
}

func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("invalid order %q, select from [%s]", e.Direction, strings.Join(e.Valid, ", "))
}
