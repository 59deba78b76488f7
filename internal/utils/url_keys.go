package utils

const (
	// NoteIdParamKey is the key for the note ID used in routing parameters.
	NoteIdParamKey = "noteId"

	// TokenParamKey is the key for verification and reset tokens used in routing parameters.
	TokenParamKey = "token"

	// QueryParamKey is the key for a generic search query used in query parameters.
	QueryParamKey = "q"
)
