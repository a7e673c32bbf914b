package service

import (
	"crypto/rand"
	"errors"
	"fmt"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/security"
	"pennyjar/internal/validation"
)

var (
	ErrAlreadyInFamily  = errors.New("user already belongs to a family")
	ErrInvalidInvite    = errors.New("invalid invite code")
	ErrFamilyNotFound   = errors.New("family not found")
	ErrChildNotFound    = errors.New("child not found")
	ErrNotFamilyMember  = errors.New("not a member of this family")
	ErrChildHasNoLogin  = errors.New("child has no login account")
	ErrChildAlreadyHere = errors.New("child already has a login account")
)

// ChildCredentials holds a freshly generated child login. The plaintext
// password is only available at creation time.
type ChildCredentials struct {
	Username string
	Password string
}

// FamilyService manages families and the children inside them
type FamilyService struct {
	familyRepo *repository.FamilyRepository
	userRepo   *repository.UserRepository
	childRepo  *repository.ChildRepository
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository, userRepo *repository.UserRepository, childRepo *repository.ChildRepository) *FamilyService {
	return &FamilyService{
		familyRepo: familyRepo,
		userRepo:   userRepo,
		childRepo:  childRepo,
	}
}

const inviteCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func generateInviteCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	for i := range buf {
		buf[i] = inviteCodeAlphabet[int(buf[i])%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}

// CreateFamily creates a family owned by the user and makes them a member
func (s *FamilyService) CreateFamily(ownerUserID int64, name string) (*models.Family, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetUserByID(ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if owner == nil {
		return nil, ErrInvalidCredentials
	}
	if owner.FamilyID != nil {
		return nil, ErrAlreadyInFamily
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, err
	}

	family, err := s.familyRepo.CreateFamily(name, code, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}
	return family, nil
}

// JoinFamily adds a parent to an existing family by invite code
func (s *FamilyService) JoinFamily(userID int64, inviteCode string) (*models.Family, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.FamilyID != nil {
		return nil, ErrAlreadyInFamily
	}

	family, err := s.familyRepo.GetFamilyByInviteCode(inviteCode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}
	if family == nil {
		return nil, ErrInvalidInvite
	}

	if err := s.userRepo.SetUserFamily(userID, &family.ID); err != nil {
		return nil, fmt.Errorf("failed to join family: %w", err)
	}
	return family, nil
}

// LeaveFamily detaches a parent from their family
func (s *FamilyService) LeaveFamily(userID int64) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.FamilyID == nil {
		return ErrNotFamilyMember
	}
	if err := s.userRepo.SetUserFamily(userID, nil); err != nil {
		return fmt.Errorf("failed to leave family: %w", err)
	}
	return nil
}

// GetFamily retrieves a family with its parents and children
func (s *FamilyService) GetFamily(familyID int64) (*models.FamilyWithMembers, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}

	parents, err := s.userRepo.ListParentsByFamily(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parents: %w", err)
	}

	children, err := s.childRepo.ListChildrenByFamily(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	return &models.FamilyWithMembers{
		Family:   *family,
		Parents:  parents,
		Children: children,
	}, nil
}

// RenameFamily updates the family name
func (s *FamilyService) RenameFamily(familyID int64, name string) error {
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	if err := s.familyRepo.UpdateFamilyName(familyID, name); err != nil {
		return fmt.Errorf("failed to rename family: %w", err)
	}
	return nil
}

// CreateChild adds a child profile to the family
func (s *FamilyService) CreateChild(familyID int64, name, avatarColor string) (*models.Child, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	child, err := s.childRepo.CreateChild(familyID, nil, name, avatarColor)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	return child, nil
}

// GetChild retrieves a child, enforcing family membership
func (s *FamilyService) GetChild(familyID, childID int64) (*models.Child, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if child.FamilyID != familyID {
		return nil, ErrNotFamilyMember
	}
	return child, nil
}

// ListChildren retrieves the family's children
func (s *FamilyService) ListChildren(familyID int64) ([]models.Child, error) {
	children, err := s.childRepo.ListChildrenByFamily(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return children, nil
}

// UpdateChild updates a child's display fields
func (s *FamilyService) UpdateChild(familyID, childID int64, name, avatarColor string) (*models.Child, error) {
	child, err := s.GetChild(familyID, childID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.childRepo.UpdateChildProfile(child.ID, name, avatarColor); err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	return s.childRepo.GetChildByID(childID)
}

// DeleteChild removes a child and their login account if one exists
func (s *FamilyService) DeleteChild(familyID, childID int64) error {
	child, err := s.GetChild(familyID, childID)
	if err != nil {
		return err
	}

	if child.UserID != nil {
		if err := s.userRepo.DeleteUser(*child.UserID); err != nil {
			return fmt.Errorf("failed to delete child account: %w", err)
		}
	}
	if err := s.childRepo.DeleteChild(childID); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}

// CreateChildLogin generates a username and password for a child so they can
// sign in themselves. The plaintext password is returned once.
func (s *FamilyService) CreateChildLogin(familyID, childID int64) (*ChildCredentials, error) {
	child, err := s.GetChild(familyID, childID)
	if err != nil {
		return nil, err
	}
	if child.UserID != nil {
		return nil, ErrChildAlreadyHere
	}

	var username string
	for attempt := 0; attempt < 5; attempt++ {
		candidate, err := security.GenerateChildUsername()
		if err != nil {
			return nil, fmt.Errorf("failed to generate username: %w", err)
		}
		existing, err := s.userRepo.GetUserByUsername(candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if existing == nil {
			username = candidate
			break
		}
	}
	if username == "" {
		return nil, errors.New("failed to find a free username")
	}

	password, err := security.GenerateChildPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateChildUser(username, hash, child.Name, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to create child account: %w", err)
	}
	if err := s.childRepo.LinkUser(childID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to link child account: %w", err)
	}

	return &ChildCredentials{Username: username, Password: password}, nil
}

// ResetChildPassword generates a fresh password for a child login
func (s *FamilyService) ResetChildPassword(familyID, childID int64) (*ChildCredentials, error) {
	child, err := s.GetChild(familyID, childID)
	if err != nil {
		return nil, err
	}
	if child.UserID == nil {
		return nil, ErrChildHasNoLogin
	}

	user, err := s.userRepo.GetUserByID(*child.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child account: %w", err)
	}
	if user == nil {
		return nil, ErrChildHasNoLogin
	}

	password, err := security.GenerateChildPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdateUserPassword(user.ID, hash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return &ChildCredentials{Username: user.Username, Password: password}, nil
}
