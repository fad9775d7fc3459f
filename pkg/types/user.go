package types

type User struct {
	ID             string `json:"id" db:"id"`
	Appid          string `json:"appid" db:"appid"`
	Email          string `json:"email" db:"email"`
	FirstName      string `json:"first_name" db:"first_name"`
	LastName       string `json:"last_name" db:"last_name"`
	Avatar         string `json:"avatar" db:"avatar"`
	Password       string `json:"-" db:"password"`
	Salt           string `json:"-" db:"salt"`
	EmailVerified  bool   `json:"email_verified" db:"email_verified"`
	LastSignedInAt int64  `json:"last_signed_in_at" db:"last_signed_in_at"`
	CreatedAt      int64  `json:"created_at" db:"created_at"`
	UpdatedAt      int64  `json:"updated_at" db:"updated_at"`
}

func (u User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UpdateUserProfile nil 字段不更新
type UpdateUserProfile struct {
	FirstName *string
	LastName  *string
	Avatar    *string
}
