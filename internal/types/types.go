package types

import (
	"stockchat-api/internal/gateway"
	"stockchat-api/internal/reply"
)

type ChatRequest struct {
	Message   string `json:"message"`
	SessionId *int64 `json:"session_id,optional"`
}

// ChatResponse.Response is a single reply object when the turn produced one
// reply and a list otherwise.
type ChatResponse struct {
	Response  any   `json:"response"`
	SessionId int64 `json:"session_id"`
}

type ChatIdRequest struct {
	Id int64 `path:"id"`
}

type UpdateTitleRequest struct {
	Id    int64  `path:"id"`
	Title string `json:"title"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ChatSummary struct {
	Id        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ChatsResponse struct {
	Chats []ChatSummary `json:"chats"`
}

type ChatMessage struct {
	Id             int64                   `json:"id"`
	Role           string                  `json:"role"`
	Content        string                  `json:"content"`
	CreatedAt      string                  `json:"created_at"`
	Price          *float64                `json:"price,omitempty"`
	ChangePercent  *float64                `json:"changePercent,omitempty"`
	MonthlyData    []gateway.HistoryBar    `json:"monthlyData,omitempty"`
	ComparisonData []reply.ComparisonEntry `json:"comparisonData,omitempty"`
}

type MessagesResponse struct {
	Messages []ChatMessage `json:"messages"`
}
