package endpoints

import dErrors "checklist/pkg/domain-errors"

var (
	ErrUnknownOperation = dErrors.New(dErrors.CodeNotFound, "unknown endpoint operation")
	ErrInvalidParam     = dErrors.New(dErrors.CodeBadRequest, "operation requires a valid id parameter")
)
