package structs

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Response struct {
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"`
	Notice  string `json:"notice,omitempty"`
	Payload any    `json:"payload,omitempty"`
}
