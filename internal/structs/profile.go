package structs

type Profile struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	TelegramUserID   int64  `json:"telegram_user_id,omitempty"`
	TelegramUsername string `json:"telegram_username,omitempty"`
}

// TelegramUser is the host-provided identity used by the auth endpoints.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date,omitempty"`
	Hash      string `json:"hash,omitempty"`
}

type MiniAppAuth struct {
	InitData           string        `json:"init_data,omitempty"`
	InitDataUnsafeUser *TelegramUser `json:"init_data_unsafe_user,omitempty"`
}

type AuthResult struct {
	TelegramUserID int64  `json:"telegram_user_id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
}
