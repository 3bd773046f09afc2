package identity

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/skvortsov/shop-backend/internal/models"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrNotFound = errors.New("identity not found")

// Identity is the polymorphic view over the disjoint Admin and User tables:
// one record, one role tag.
type Identity struct {
	ID           uint
	Role         string
	Name         string
	Email        string
	PasswordHash string
}

func (i *Identity) Subject() string { return strconv.FormatUint(uint64(i.ID), 10) }

// ByEmail probes both identity spaces. The admin table wins ties, matching
// the original lookup precedence.
func ByEmail(db *gorm.DB, email string) (*Identity, error) {
	var admin models.Admin
	err := db.Where("email = ?", email).First(&admin).Error
	if err == nil {
		return &Identity{ID: admin.ID, Role: RoleAdmin, Name: admin.Name, Email: admin.Email, PasswordHash: admin.PasswordHash}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var user models.User
	err = db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &Identity{ID: user.ID, Role: RoleUser, Name: user.Name, Email: user.Email, PasswordHash: user.PasswordHash}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return nil, ErrNotFound
}

// ByID resolves an identity authoritatively against the table named by role.
// The token's role claim only selects which space to probe; existence is
// always re-checked here.
func ByID(db *gorm.DB, role string, id uint) (*Identity, error) {
	switch role {
	case RoleAdmin:
		var admin models.Admin
		if err := db.First(&admin, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("db error: %w", err)
		}
		return &Identity{ID: admin.ID, Role: RoleAdmin, Name: admin.Name, Email: admin.Email, PasswordHash: admin.PasswordHash}, nil
	case RoleUser:
		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("db error: %w", err)
		}
		return &Identity{ID: user.ID, Role: RoleUser, Name: user.Name, Email: user.Email, PasswordHash: user.PasswordHash}, nil
	}
	return nil, ErrNotFound
}
