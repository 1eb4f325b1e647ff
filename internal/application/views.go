package application

import (
	"time"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
)

// UserView is the client-facing projection of a user. The surrogate key and
// credential material never appear here.
type UserView struct {
	PublicID           string    `json:"public_id"`
	FullName           string    `json:"full_name"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email,omitempty"`
	Status             string    `json:"account_status"`
	Role               []string  `json:"role"`
	AvatarURL          string    `json:"avatar_url,omitempty"`
	VerificationMethod string    `json:"verification_method"`
	CreatedAt          time.Time `json:"created_at"`
}

func NewUserView(u *entity.User) UserView {
	return UserView{
		PublicID:           u.PublicID,
		FullName:           u.FullName,
		Phone:              u.Phone,
		Email:              u.Email,
		Status:             string(u.Status),
		Role:               u.Roles(),
		AvatarURL:          u.AvatarURL,
		VerificationMethod: string(u.VerificationMethod),
		CreatedAt:          u.CreatedAt,
	}
}
