package roster

import "errors"

var (
	ErrRosterNotFound      = errors.New("roster not found")
	ErrDuplicateAssignment = errors.New("staff member is assigned more than once on the same day")
	ErrTemplateNotFound    = errors.New("roster template not found")
	ErrTemplateNameExists  = errors.New("roster template name already exists")
)
