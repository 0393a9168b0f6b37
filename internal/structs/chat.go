package structs

const (
	ChatFromUser = "user"
	ChatFromBot  = "bot"
)

type ChatMessage struct {
	From string `json:"from"`
	Text string `json:"text"`
	Time string `json:"time"`
}

type PostChatMessage struct {
	Text string `json:"text"`
}
