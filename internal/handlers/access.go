package handlers

import (
	"fmt"
	"net/http"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/security"
	"pennyjar/internal/service"
)

// requireFamily extracts the family id from the token claims. Parents who
// have not created or joined a family yet get a 403.
func requireFamily(w http.ResponseWriter, claims *security.Claims) (int64, bool) {
	if claims == nil || claims.FamilyID == nil {
		respondWithError(w, http.StatusForbidden, "Join or create a family first", "", nil)
		return 0, false
	}
	return *claims.FamilyID, true
}

// childAccess authorizes requests against a child profile. Parents may act
// on any child in their family; child users only on their own profile.
// Children outside the caller's reach read as not found so their existence
// is never revealed.
type childAccess struct {
	childRepo *repository.ChildRepository
}

func (a childAccess) authorize(claims *security.Claims, childID int64) (*models.Child, error) {
	child, err := a.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, service.ErrChildNotFound
	}

	switch claims.Role {
	case models.RoleParent:
		if claims.FamilyID == nil || child.FamilyID != *claims.FamilyID {
			return nil, service.ErrChildNotFound
		}
	case models.RoleChild:
		if child.UserID == nil || *child.UserID != claims.UserID {
			return nil, service.ErrChildNotFound
		}
	default:
		return nil, service.ErrChildNotFound
	}

	return child, nil
}

// self resolves the child profile linked to a child-role user
func (a childAccess) self(claims *security.Claims) (*models.Child, error) {
	child, err := a.childRepo.GetChildByUserID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, service.ErrChildNotFound
	}
	return child, nil
}
