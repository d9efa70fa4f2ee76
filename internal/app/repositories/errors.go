package repositories

import (
	"fmt"

	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/dberrors"
)

// translate maps driver errors onto the domain taxonomy: a missing row becomes
// notFound, a unique violation becomes duplicate, and a dangling reference
// becomes a NotFound error. Other errors are wrapped with op.
func translate(err error, op string, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case dberrors.IsNoRows(err) && notFound != nil:
		return notFound
	case dberrors.IsDuplicateConstraintError(err, "") && duplicate != nil:
		return duplicate
	case dberrors.IsForeignKeyError(err):
		return fmt.Errorf("%w: referenced row does not exist", apperrors.ErrNotFound)
	case dberrors.IsCheckViolation(err):
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return fmt.Errorf("error %s: %w", op, err)
}

// translateDelete is translate for deletes, where a foreign key violation
// means dependent rows still reference the target.
func translateDelete(err error, op string, restricted error) error {
	if dberrors.IsForeignKeyError(err) && restricted != nil {
		return restricted
	}
	return translate(err, op, nil, nil)
}
