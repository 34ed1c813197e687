package cli

import (
	"errors"

	"github.com/dmitrijs2005/whatthenote/internal/client/client"
	"github.com/dmitrijs2005/whatthenote/internal/client/pages"
	"github.com/dmitrijs2005/whatthenote/internal/client/services"
	"github.com/dmitrijs2005/whatthenote/internal/common"
)

var errNotLoggedIn = errors.New("not logged in")

// userMessage maps a command error to the line shown to the user.
func userMessage(err error) string {
	var (
		ve     *common.ValidationError
		apiErr *client.APIError
	)
	switch {
	case errors.Is(err, pages.ErrCancelled):
		return "Cancelled."
	case errors.Is(err, errNotLoggedIn):
		return "Please log in first (type 'login' or 'register')."
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, services.ErrQuestionInFlight):
		return "Still answering your previous question about this document."
	case errors.Is(err, services.ErrUploadInProgress):
		return "An upload is already in progress."
	case errors.Is(err, common.ErrNotFound):
		return "Document not found. Open one with 'show <id>'."
	default:
		return "Error: " + err.Error()
	}
}
