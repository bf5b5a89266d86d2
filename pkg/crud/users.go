package crud

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"airmon.uz/telemetry-service/pkg/models"
)

// UserOut never carries the password hash.
type UserOut struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Disabled bool        `json:"disabled"`
}

var userColumns = []string{
	"id", "created_at", "username", "email", "role", "disabled",
}

type UsersCrud struct {
	*Crud[models.User, UserOut]
}

func Users(s *Session) *UsersCrud {
	return &UsersCrud{New[models.User, UserOut](s, Spec{
		DefaultOrder: "created_at DESC",
		Columns:      userColumns,
	})}
}

// GetByUsername returns the full user row, hash included, for credential
// checks. Exact, case-sensitive match.
func (u *UsersCrud) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := u.s.DB().
		Where("username = ?", username).
		Where("deleted_at IS NULL").
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("select", err)
	}
	return &user, nil
}
