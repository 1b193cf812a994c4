package core

import (
	"errors"

	"github.com/signalsfoundry/mission-designer/model"
)

var (
	// ErrUnitMismatch indicates a constraint value uses a unit outside the
	// set allowed for the requirement or constraint type.
	ErrUnitMismatch = errors.New("unit not allowed for type")
	// ErrInvalidComponent indicates a component record failed validation.
	ErrInvalidComponent = errors.New("invalid component")
	// ErrInvalidRecord indicates a record is missing a required field.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrSolutionNotFound indicates a design solution id is unknown to the mission.
	ErrSolutionNotFound = errors.New("design solution not found")
	// ErrSolutionExists indicates a design solution id is already registered.
	ErrSolutionExists = errors.New("design solution already exists")
	// ErrDuplicateID indicates an objective, requirement or constraint id is already registered.
	ErrDuplicateID = errors.New("duplicate id")
)

// IsConstructionError reports whether err came from rejecting a record at
// construction time (bad enum, unit mismatch, malformed constraint shape or
// geometry).
func IsConstructionError(err error) bool {
	return errors.Is(err, ErrUnitMismatch) ||
		errors.Is(err, ErrInvalidComponent) ||
		errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, model.ErrInvalidEnum) ||
		errors.Is(err, model.ErrInvalidConstraintShape) ||
		errors.Is(err, model.ErrInvalidGeometry)
}
