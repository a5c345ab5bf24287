package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/response"
)

type tokenResolver interface {
	ResolveSignedToken(token string) (resourceID, relPath string, err error)
}

type fileOpener interface {
	Open(relPath string) (*os.File, error)
}

// DownloadHandler serves the files behind signed download links.
type DownloadHandler struct {
	resolver tokenResolver
	store    fileOpener
}

// NewDownloadHandler constructs the handler.
func NewDownloadHandler(resolver tokenResolver, store fileOpener) *DownloadHandler {
	return &DownloadHandler{resolver: resolver, store: store}
}

// Serve godoc
// @Summary Stream a file behind a signed, short-lived token
// @Tags Resources
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /files/{token} [get]
func (h *DownloadHandler) Serve(c *gin.Context) {
	_, relPath, err := h.resolver.ResolveSignedToken(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.store.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file no longer available"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(relPath)+`"`)
	http.ServeContent(c.Writer, c.Request, filepath.Base(relPath), info.ModTime(), file)
}
