package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"server-notes/internal/goerrors"
	"server-notes/internal/schemas"
	"server-notes/internal/store"
	"server-notes/internal/utils"
	"server-notes/internal/validators"
)

// NoteHdl defines the interface for handling note related HTTP requests.
type NoteHdl interface {
	CreateNote(ctx *gin.Context)
	GetNotes(ctx *gin.Context)
	GetNote(ctx *gin.Context)
	SearchNotes(ctx *gin.Context)
	EditNote(ctx *gin.Context)
	PinNote(ctx *gin.Context)
	DeleteNote(ctx *gin.Context)
}

// NoteHandler provides methods to handle note related HTTP requests of the logged-in user.
type NoteHandler struct {
	NoteStore store.NoteStore
}

var errInvalidNoteId = errors.New("invalid note id")

// NewNoteHandler returns a new NoteHandler with the provided note store.
func NewNoteHandler(noteStore store.NoteStore) NoteHdl {
	return &NoteHandler{NoteStore: noteStore}
}

func (handler *NoteHandler) CreateNote(ctx *gin.Context) {
	createNoteRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.CreateNoteRequest)

	note := &schemas.Note{
		OwnerID: currentUsername(ctx),
		Title:   createNoteRequest.Title,
		Content: createNoteRequest.Content,
		Tags:    createNoteRequest.Tags,
	}
	if err := handler.NoteStore.Create(ctx, note); err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, note, http.StatusCreated)
}

// GetNotes lists the notes of the logged-in user as a plain array, pinned notes first.
func (handler *NoteHandler) GetNotes(ctx *gin.Context) {
	notes, err := handler.NoteStore.List(ctx, currentUsername(ctx))
	if err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, notes, http.StatusOK)
}

func (handler *NoteHandler) GetNote(ctx *gin.Context) {
	noteId, ok := noteIdParam(ctx)
	if !ok {
		return
	}

	note, err := handler.NoteStore.Get(ctx, currentUsername(ctx), noteId)
	if err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, note, http.StatusOK)
}

// SearchNotes matches the query against title, content and tags. An empty query lists all notes.
func (handler *NoteHandler) SearchNotes(ctx *gin.Context) {
	query := validators.GetValidator().SanitizeText(ctx.Query(utils.QueryParamKey))
	if query == "" {
		handler.GetNotes(ctx)
		return
	}

	notes, err := handler.NoteStore.Search(ctx, currentUsername(ctx), query)
	if err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, notes, http.StatusOK)
}

// EditNote applies a partial update. At least one of title, content or tags must be given,
// an empty title or content leaves the stored value untouched.
func (handler *NoteHandler) EditNote(ctx *gin.Context) {
	noteId, ok := noteIdParam(ctx)
	if !ok {
		return
	}
	editNoteRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.EditNoteRequest)

	changes := store.NoteChanges{
		Title:   editNoteRequest.Title,
		Content: editNoteRequest.Content,
		Tags:    editNoteRequest.Tags,
	}
	note, err := handler.NoteStore.Update(ctx, currentUsername(ctx), noteId, changes)
	if err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, note, http.StatusOK)
}

func (handler *NoteHandler) PinNote(ctx *gin.Context) {
	noteId, ok := noteIdParam(ctx)
	if !ok {
		return
	}

	note, err := handler.NoteStore.TogglePin(ctx, currentUsername(ctx), noteId)
	if err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, note, http.StatusOK)
}

func (handler *NoteHandler) DeleteNote(ctx *gin.Context) {
	noteId, ok := noteIdParam(ctx)
	if !ok {
		return
	}

	if err := handler.NoteStore.Delete(ctx, currentUsername(ctx), noteId); err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.MessageDTO{Message: "Note deleted"}, http.StatusOK)
}

// noteIdParam parses the note id from the path and writes a bad request if it is not a uuid.
func noteIdParam(ctx *gin.Context) (uuid.UUID, bool) {
	noteId, err := uuid.Parse(ctx.Param(utils.NoteIdParamKey))
	if err != nil {
		utils.WriteAndLogError(ctx, goerrors.BadRequest, http.StatusBadRequest, errInvalidNoteId)
		return uuid.Nil, false
	}
	return noteId, true
}
