package models

// User is the profile owned by the authenticated session
type User struct {
	ID                      int64          `json:"id"`
	Email                   string         `json:"email"`
	Username                string         `json:"username"`
	FullName                string         `json:"full_name"`
	IsActive                bool           `json:"is_active"`
	IsSuperuser             bool           `json:"is_superuser"`
	Role                    string         `json:"role,omitempty"`
	ProfilePicture          *string        `json:"profile_picture,omitempty"`
	NotificationPreferences map[string]any `json:"notification_preferences,omitempty"`
	UserPreferences         map[string]any `json:"user_preferences,omitempty"`
	GoogleID                *string        `json:"google_id,omitempty"`
	CreatedAt               Timestamp      `json:"created_at"`
	UpdatedAt               Timestamp      `json:"updated_at"`
}

// UserUpdate is the PUT /users/me payload; nil fields are left untouched.
type UserUpdate struct {
	Email                   *string        `json:"email,omitempty"`
	Username                *string        `json:"username,omitempty"`
	FullName                *string        `json:"full_name,omitempty"`
	NotificationPreferences map[string]any `json:"notification_preferences,omitempty"`
	UserPreferences         map[string]any `json:"user_preferences,omitempty"`
}

func (u UserUpdate) Validate() error {
	if u.Email != nil && *u.Email == "" {
		return required("email")
	}
	if u.Username != nil && *u.Username == "" {
		return required("username")
	}
	return nil
}

// RegisterRequest is the POST /auth/register payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (r RegisterRequest) Validate() error {
	switch {
	case r.Email == "":
		return required("email")
	case r.Username == "":
		return required("username")
	case r.Password == "":
		return required("password")
	}
	return nil
}

// PasswordChange is the POST /users/me/change-password payload
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (p PasswordChange) Validate() error {
	if p.CurrentPassword == "" {
		return required("current_password")
	}
	if p.NewPassword == "" {
		return required("new_password")
	}
	return nil
}

// Token is the credential set returned by login, refresh and OAuth
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// UserDataExport is the GET /users/me/export document
type UserDataExport struct {
	User       map[string]any   `json:"user"`
	Tasks      []map[string]any `json:"tasks"`
	Risks      []map[string]any `json:"risks"`
	Projects   []map[string]any `json:"projects"`
	Posts      []map[string]any `json:"posts"`
	AIRequests []map[string]any `json:"ai_requests"`
}
