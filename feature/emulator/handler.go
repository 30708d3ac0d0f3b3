package emulator

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"archive-manager/core/logger"
)

// Handler handles HTTP requests of the archive API.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the archive API routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api")

	api.Post("/records", h.HandleCreateRecord)
	api.Get("/records", h.HandleListRecords)
	api.Get("/user/records", h.HandleListUserRecords)
	api.Get("/records/:id", h.HandleGetRecord)

	api.Post("/records/:id/draft", h.HandleCreateDraft)
	api.Get("/records/:id/draft", h.HandleGetDraft)
	api.Put("/records/:id/draft", h.HandlePutDraft)
	api.Delete("/records/:id/draft", h.HandleDeleteDraft)
	api.Post("/records/:id/versions", h.HandleCreateVersion)
	api.Post("/records/:id/draft/actions/publish", h.HandlePublish)
	api.Post("/records/:id/draft/actions/files-import", h.HandleImportFiles)

	api.Get("/records/:id/draft/files", h.HandleListFiles)
	api.Post("/records/:id/draft/files", h.HandleRegisterFiles)
	api.Put("/records/:id/draft/files/:key/content", h.HandleUploadContent)
	api.Post("/records/:id/draft/files/:key/commit", h.HandleCommitFile)
	api.Delete("/records/:id/draft/files/:key", h.HandleDeleteFile)
}

// HandleCreateRecord creates a new draft record.
// @Summary Create Record
// @Description Create a new unpublished draft record from a metadata envelope.
// @Tags records
// @Accept json
// @Produce json
// @Param envelope body map[string]interface{} true "Record metadata envelope"
// @Success 201 {object} map[string]interface{} "Draft Record"
// @Failure 400 {object} map[string]interface{} "Bad Request"
// @Router /api/records [post]
func (h *Handler) HandleCreateRecord(c *fiber.Ctx) error {
	envelope, err := parseEnvelope(c)
	if err != nil {
		return h.error(c, err)
	}
	doc, err := h.service.CreateRecord(c.Context(), envelope)
	if err != nil {
		return h.error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// HandleListRecords lists published records.
// @Summary List Records
// @Description List published records, optionally across all versions.
// @Tags records
// @Produce json
// @Param allversions query bool false "Include all versions"
// @Param size query int false "Maximum number of hits"
// @Success 200 {object} map[string]interface{} "Search Result"
// @Router /api/records [get]
func (h *Handler) HandleListRecords(c *fiber.Ctx) error {
	doc, err := h.service.ListRecords(c.Context(), c.QueryBool("allversions", false), c.QueryInt("size", 25))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(doc)
}

// HandleListUserRecords lists the records of the emulated user.
// @Summary List User Records
// @Description List the user's records including unpublished drafts.
// @Tags records
// @Produce json
// @Param allversions query bool false "Include all versions"
// @Param size query int false "Maximum number of hits"
// @Success 200 {object} map[string]interface{} "Search Result"
// @Router /api/user/records [get]
func (h *Handler) HandleListUserRecords(c *fiber.Ctx) error {
	doc, err := h.service.ListUserRecords(c.Context(), c.QueryBool("allversions", false), c.QueryInt("size", 25))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(doc)
}

// HandleGetRecord returns a published record version.
// @Summary Get Record
// @Description Get the published view of a record version.
// @Tags records
// @Produce json
// @Param id path string true "Record id (e.g. 'pxrf9-zfh45')"
// @Success 200 {object} map[string]interface{} "Record"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id} [get]
func (h *Handler) HandleGetRecord(c *fiber.Ctx) error {
	doc, err := h.service.GetRecord(c.Context(), c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(doc)
}

// HandleCreateDraft opens an edit draft on a published record.
// @Summary Create Draft
// @Description Open an edit draft for updating the metadata of a published record.
// @Tags records
// @Produce json
// @Param id path string true "Record id"
// @Success 201 {object} map[string]interface{} "Draft Record"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft [post]
func (h *Handler) HandleCreateDraft(c *fiber.Ctx) error {
	doc, err := h.service.CreateDraft(c.Context(), c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// HandleGetDraft returns the draft of a record version.
// @Summary Get Draft
// @Description Get the draft view of a record version.
// @Tags records
// @Produce json
// @Param id path string true "Record id"
// @Success 200 {object} map[string]interface{} "Draft Record"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft [get]
func (h *Handler) HandleGetDraft(c *fiber.Ctx) error {
	doc, err := h.service.GetDraft(c.Context(), c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(doc)
}

// HandlePutDraft replaces the draft envelope of a record version.
// @Summary Update Draft
// @Description Replace the metadata envelope of a draft.
// @Tags records
// @Accept json
// @Produce json
// @Param id path string true "Record id"
// @Param envelope body map[string]interface{} true "Record metadata envelope"
// @Success 200 {object} map[string]interface{} "Draft Record"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft [put]
func (h *Handler) HandlePutDraft(c *fiber.Ctx) error {
	envelope, err := parseEnvelope(c)
	if err != nil {
		return h.error(c, err)
	}
	doc, err := h.service.PutDraft(c.Context(), c.Params("id"), envelope)
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(doc)
}

// HandleDeleteDraft discards the draft of a record version.
// @Summary Delete Draft
// @Description Discard a draft. An unpublished draft disappears with its files.
// @Tags records
// @Param id path string true "Record id"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft [delete]
func (h *Handler) HandleDeleteDraft(c *fiber.Ctx) error {
	if err := h.service.DeleteDraft(c.Context(), c.Params("id")); err != nil {
		return h.error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleCreateVersion opens a new-version draft.
// @Summary Create Version
// @Description Open a draft for the next version of the entry a record belongs to.
// @Tags records
// @Produce json
// @Param id path string true "Record id of any existing version"
// @Success 201 {object} map[string]interface{} "Draft Record"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/versions [post]
func (h *Handler) HandleCreateVersion(c *fiber.Ctx) error {
	doc, err := h.service.CreateVersion(c.Context(), c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// HandlePublish publishes the draft of a record version.
// @Summary Publish Draft
// @Description Publish a draft. All linked files must be committed.
// @Tags records
// @Produce json
// @Param id path string true "Record id"
// @Success 202 {object} map[string]interface{} "Published Record"
// @Failure 400 {object} map[string]interface{} "Bad Request"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft/actions/publish [post]
func (h *Handler) HandlePublish(c *fiber.Ctx) error {
	doc, err := h.service.Publish(c.Context(), c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(doc)
}

// HandleImportFiles imports the files of the previous published version.
// @Summary Import Files
// @Description Copy the file links of the latest published version into a new-version draft.
// @Tags files
// @Produce json
// @Param id path string true "Record id"
// @Success 201 {object} map[string]interface{} "File Listing"
// @Failure 400 {object} map[string]interface{} "Bad Request"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft/actions/files-import [post]
func (h *Handler) HandleImportFiles(c *fiber.Ctx) error {
	doc, err := h.service.ImportFiles(c.Context(), c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// HandleListFiles lists the files linked to a record version.
// @Summary List Files
// @Description List the file links of a record version.
// @Tags files
// @Produce json
// @Param id path string true "Record id"
// @Success 200 {object} map[string]interface{} "File Listing"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft/files [get]
func (h *Handler) HandleListFiles(c *fiber.Ctx) error {
	doc, err := h.service.ListFiles(c.Context(), c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(doc)
}

// HandleRegisterFiles registers file names on a draft.
// @Summary Register Files
// @Description Reserve file names on a draft before uploading their content.
// @Tags files
// @Accept json
// @Produce json
// @Param id path string true "Record id"
// @Param keys body []map[string]string true "File keys, e.g. [{\"key\": \"data.csv\"}]"
// @Success 201 {object} map[string]interface{} "File Listing"
// @Failure 400 {object} map[string]interface{} "Bad Request"
// @Router /api/records/{id}/draft/files [post]
func (h *Handler) HandleRegisterFiles(c *fiber.Ctx) error {
	var entries []struct {
		Key string `json:"key"`
	}
	if err := c.BodyParser(&entries); err != nil {
		return h.error(c, errBadRequest("Invalid JSON body."))
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.Key)
	}
	doc, err := h.service.RegisterFiles(c.Context(), c.Params("id"), keys)
	if err != nil {
		return h.error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// HandleUploadContent stores the content of a registered file.
// @Summary Upload File Content
// @Description Store the raw content of a registered file. The checksum is computed server-side.
// @Tags files
// @Accept octet-stream
// @Param id path string true "Record id"
// @Param key path string true "File key"
// @Success 200 "OK"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft/files/{key}/content [put]
func (h *Handler) HandleUploadContent(c *fiber.Ctx) error {
	if err := h.service.UploadContent(c.Context(), c.Params("id"), fileKey(c), c.Body()); err != nil {
		return h.error(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// HandleCommitFile finalizes an uploaded file.
// @Summary Commit File
// @Description Mark an uploaded file as completed.
// @Tags files
// @Produce json
// @Param id path string true "Record id"
// @Param key path string true "File key"
// @Success 200 {object} map[string]interface{} "File Entry"
// @Failure 400 {object} map[string]interface{} "Bad Request"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft/files/{key}/commit [post]
func (h *Handler) HandleCommitFile(c *fiber.Ctx) error {
	doc, err := h.service.CommitFile(c.Context(), c.Params("id"), fileKey(c))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(doc)
}

// HandleDeleteFile removes a file from a draft.
// @Summary Delete File
// @Description Remove a file link and its content from a draft.
// @Tags files
// @Param id path string true "Record id"
// @Param key path string true "File key"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/records/{id}/draft/files/{key} [delete]
func (h *Handler) HandleDeleteFile(c *fiber.Ctx) error {
	if err := h.service.DeleteFile(c.Context(), c.Params("id"), fileKey(c)); err != nil {
		return h.error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// error renders a failure as the archive API error body.
func (h *Handler) error(c *fiber.Ctx, err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.status).JSON(fiber.Map{
			"status":  apiErr.status,
			"message": apiErr.message,
		})
	}

	logger.WithRequestID(h.service.log, c).Error("archive operation failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  fiber.StatusInternalServerError,
		"message": "An internal server error occurred.",
	})
}

func parseEnvelope(c *fiber.Ctx) (map[string]any, error) {
	envelope := map[string]any{}
	if err := c.BodyParser(&envelope); err != nil {
		return nil, errBadRequest("Invalid JSON body.")
	}
	return envelope, nil
}

// fileKey returns the unescaped file key path parameter.
func fileKey(c *fiber.Ctx) string {
	raw := c.Params("key")
	key, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return key
}
