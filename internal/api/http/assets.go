package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/domain/extension"
	"github.com/GriffinCanCode/unchive/internal/shared/id"
	"github.com/GriffinCanCode/unchive/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// GetAsset serves a published asset payload
func (h *Handlers) GetAsset(c *gin.Context) {
	ref, ok := assetRef(c)
	if !ok {
		return
	}
	item, found := h.assets.Get(ref)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": item.Name}))
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, item.MIME, item.Data)
}

// RevokeAsset releases a published reference
func (h *Handlers) RevokeAsset(c *gin.Context) {
	ref, ok := assetRef(c)
	if !ok {
		return
	}
	if _, found := h.assets.Get(ref); !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}
	h.assets.Revoke(ref)
	c.Status(http.StatusNoContent)
}

func assetRef(c *gin.Context) (string, bool) {
	ref := c.Param("ref")
	if err := utils.ValidateID(ref, id.AssetPrefix, "ref"); err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return ref, true
}

// DescribeExtensions reads an uploaded extension package (.aix) and
// returns the info of every extension in it
func (h *Handlers) DescribeExtensions(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "missing form file \"file\"")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "unreadable upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, fmt.Sprintf("unreadable upload: %v", err))
		return
	}

	reg, err := h.ingestor.ReadExtensions(c.Request.Context(), archive.Bytes{Filename: path.Base(fh.Filename), Data: data})
	if err != nil {
		h.fail(c, err)
		return
	}

	infos := make([]extension.Info, 0, reg.Len())
	for _, ext := range reg.Extensions() {
		infos = append(infos, extension.Describe(ext))
	}
	c.JSON(http.StatusOK, gin.H{
		"extensions":  infos,
		"diagnostics": reg.Diagnostics(),
	})
}
