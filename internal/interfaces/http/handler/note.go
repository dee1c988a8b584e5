package handler

import (
	crmapp "github.com/fub-assistant/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// NoteHandler pushes assistant suggestions onto the lead timeline in FUB
type NoteHandler struct {
	BaseHandler
	noteService *crmapp.NoteService
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(noteService *crmapp.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
	}
}

// CreateNoteRequest saves a suggestion as a CRM note
type CreateNoteRequest struct {
	PersonID string `json:"person_id" binding:"required"`
	Subject  string `json:"subject"`
	Body     string `json:"body" binding:"required,max=2000"`
}

// CreateNote writes a note to the lead through the account's FUB connection.
// POST /api/v1/notes
func (h *NoteHandler) CreateNote(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "person_id and a body of at most 2000 characters are required")
		return
	}

	result, err := h.noteService.CreateNote(c.Request.Context(), crmapp.CreateNoteInput{
		AccountID: accountID,
		PersonID:  req.PersonID,
		Subject:   req.Subject,
		Body:      req.Body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}
