package handler

import (
	"time"

	chatapp "github.com/fub-assistant/backend/internal/application/chat"
	"github.com/fub-assistant/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ChatHandler handles the assistant chat endpoints
type ChatHandler struct {
	BaseHandler
	chatService *chatapp.Service
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService *chatapp.Service) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// AskRequest is a question about the lead currently open in FUB
type AskRequest struct {
	PersonID string `json:"person_id" binding:"required"`
	Question string `json:"question" binding:"required,max=1000"`
}

// AskResponse is the formatted follow-up suggestion
type AskResponse struct {
	Answer      string    `json:"answer"`
	PersonID    string    `json:"person_id"`
	CreatedAt   time.Time `json:"created_at"`
	FromContext bool      `json:"from_context"`
}

// Ask generates a follow-up suggestion for a lead.
// POST /api/v1/chat/ask
func (h *ChatHandler) Ask(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "person_id and question are required")
		return
	}

	result, err := h.chatService.Ask(c.Request.Context(), chatapp.AskInput{
		AccountID: accountID,
		PersonID:  req.PersonID,
		Question:  req.Question,
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AskResponse{
		Answer:      result.Answer,
		PersonID:    result.PersonID,
		CreatedAt:   result.CreatedAt,
		FromContext: result.FromContext,
	})
}

// HistoryMessage is one stored chat turn
type HistoryMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// History returns the stored conversation for a lead, newest first.
// GET /api/v1/chat/history?person_id=...
func (h *ChatHandler) History(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	personID := c.Query("person_id")
	if personID == "" {
		h.BadRequest(c, "person_id is required")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "invalid pagination parameters")
		return
	}
	if listReq.Page < 1 {
		listReq.Page = 1
	}
	if listReq.PageSize < 1 {
		listReq.PageSize = 20
	}

	offset := (listReq.Page - 1) * listReq.PageSize
	messages, total, err := h.chatService.History(c.Request.Context(), accountID, personID, listReq.PageSize, offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]HistoryMessage, 0, len(messages))
	for _, m := range messages {
		items = append(items, HistoryMessage{
			ID:        m.ID.String(),
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}

	h.SuccessWithMeta(c, items, total, listReq.Page, listReq.PageSize)
}
