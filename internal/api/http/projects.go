package http

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/domain/registry"
	"github.com/GriffinCanCode/unchive/internal/domain/summary"
	"github.com/GriffinCanCode/unchive/internal/shared/id"
	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"github.com/GriffinCanCode/unchive/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead is allowed on top of the archive limit for form framing
const multipartOverhead = 1 << 20

// IngestRequest submits an archive by URL
type IngestRequest struct {
	URL  string `json:"url" binding:"required"`
	Name string `json:"name"`
}

// ProjectResponse is returned for a stored project
type ProjectResponse struct {
	ID       id.ProjectID   `json:"id"`
	Digest   string         `json:"digest"`
	Existing bool           `json:"existing"`
	Project  *types.Project `json:"project"`
}

// CreateProject ingests an uploaded archive (multipart field "file") or
// one fetched from {"url": ...}. Re-submitting identical bytes returns the
// stored project.
func (h *Handlers) CreateProject(c *gin.Context) {
	var (
		data     []byte
		filename string
		name     = c.Query("name")
		err      error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, filename, err = h.readUpload(c)
		if err != nil {
			return
		}
	} else {
		var req IngestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "expected a multipart file upload or a JSON body with url")
			return
		}
		if err := utils.ValidateURL(req.URL, "url"); err != nil {
			badRequest(c, err.Error())
			return
		}
		if h.fetcher == nil {
			badRequest(c, "URL ingestion is disabled")
			return
		}
		data, err = h.fetcher.Get(c.Request.Context(), req.URL)
		if err != nil {
			h.fail(c, err)
			return
		}
		filename = archive.URL(req.URL).Name()
		if req.Name != "" {
			name = req.Name
		}
	}

	if err := utils.ValidateName(name, "name"); err != nil {
		badRequest(c, err.Error())
		return
	}

	digest := h.hasher.Hash(data)
	if entry, ok := h.projects.Lookup(digest); ok {
		c.JSON(http.StatusOK, response(entry, true))
		return
	}

	project, err := h.ingestor.Ingest(c.Request.Context(), archive.Bytes{Filename: filename, Data: data}, name)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.publishAssets(project)

	entry, existed := h.projects.Save(project, filename, digest)
	status := http.StatusCreated
	if existed {
		// A concurrent upload of the same archive won; drop our references
		h.revokeAssets(project)
		status = http.StatusOK
	}
	h.logger.Info("Project stored",
		zap.String("id", entry.ID.String()),
		zap.String("name", project.Name),
		zap.String("digest", utils.Short(digest)))
	c.JSON(status, response(entry, existed))
}

// readUpload reads the "file" form field within the archive size limit.
// On failure the response is already written.
func (h *Handlers) readUpload(c *gin.Context) ([]byte, string, error) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "missing form file \"file\"")
		return nil, "", err
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		err := fmt.Errorf("archive of %d bytes exceeds limit of %d", fh.Size, h.maxBytes)
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return nil, "", err
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "unreadable upload")
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, "unreadable upload")
		return nil, "", err
	}
	return data, path.Base(fh.Filename), nil
}

// publishAssets gives every asset a reference so responses carry it
func (h *Handlers) publishAssets(p *types.Project) {
	for _, a := range p.Assets {
		if _, err := a.Reference(); err != nil {
			h.logger.Warn("Asset not published", zap.String("asset", a.Name), zap.Error(err))
		}
	}
}

// revokeAssets releases the references of a project that was not stored
func (h *Handlers) revokeAssets(p *types.Project) {
	for _, a := range p.Assets {
		a.Revoke()
	}
}

func response(e *registry.Entry, existed bool) ProjectResponse {
	return ProjectResponse{ID: e.ID, Digest: e.Digest, Existing: existed, Project: e.Project}
}

// ListProjects lists stored project metadata
func (h *Handlers) ListProjects(c *gin.Context) {
	list := h.projects.List()
	c.JSON(http.StatusOK, gin.H{
		"projects": list,
		"count":    len(list),
	})
}

// GetProject returns a stored project model
func (h *Handlers) GetProject(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response(entry, true))
}

// GetSummary renders a project summary as json, yaml or toml (?format=)
func (h *Handlers) GetSummary(c *gin.Context) {
	entry, ok := h.entry(c)
	if !ok {
		return
	}
	format, err := summary.ParseFormat(c.DefaultQuery("format", string(summary.FormatJSON)))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	data, err := summary.Encode(summary.Generate(entry.Project), format)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), data)
}

// DeleteProject removes a project and revokes its asset references
func (h *Handlers) DeleteProject(c *gin.Context) {
	pid, ok := projectID(c)
	if !ok {
		return
	}
	if err := h.projects.Delete(pid); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) entry(c *gin.Context) (*registry.Entry, bool) {
	pid, ok := projectID(c)
	if !ok {
		return nil, false
	}
	entry, err := h.projects.Load(pid)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return entry, true
}

func projectID(c *gin.Context) (id.ProjectID, bool) {
	raw := c.Param("id")
	if err := utils.ValidateID(raw, id.ProjectPrefix, "id"); err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return id.ProjectID(raw), true
}
