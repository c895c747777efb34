package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"chargeapi/internal/service"
)

// ListDisputes lists disputes with limit & offset.
//
// @Summary  List disputes
// @Tags     disputes
// @Produce  json
// @Param    limit  query int false "page size" default(10)
// @Param    offset query int false "offset"    default(0)
// @Success  200 {object} service.DisputeListResult
// @Failure  400 {object} errorPayload
// @Router   /disputes [get]
func ListDisputes(svc service.DisputeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDispute returns one dispute with its evidence.
//
// @Summary  Get dispute
// @Tags     disputes
// @Produce  json
// @Param    id path string true "dispute id"
// @Success  200 {object} service.DisputeDetail
// @Failure  404 {object} errorPayload
// @Router   /disputes/{id} [get]
func GetDispute(svc service.DisputeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(d)
	}
}

// UploadEvidence accepts multipart/form-data with field name "file".
//
// @Summary  Upload dispute evidence
// @Tags     disputes
// @Accept   mpfd
// @Produce  json
// @Param    id   path     string true "dispute id"
// @Param    file formData file   true "evidence file"
// @Success  201 {object} model.Evidence
// @Failure  400 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /disputes/{id}/evidence [post]
func UploadEvidence(svc service.DisputeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		e, err := svc.UploadEvidence(c.UserContext(), c.Params("id"), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// DownloadEvidence streams an evidence file.
//
// @Summary  Download dispute evidence
// @Tags     disputes
// @Produce  octet-stream
// @Param    id         path string true "dispute id"
// @Param    evidenceId path string true "evidence id"
// @Success  200 {file} file
// @Failure  404 {object} errorPayload
// @Router   /disputes/{id}/evidence/{evidenceId} [get]
func DownloadEvidence(svc service.DisputeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, e, err := svc.OpenEvidence(c.UserContext(), c.Params("id"), c.Params("evidenceId"))
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Attachment(e.Filename)
		if e.ContentType != "" {
			c.Set(fiber.HeaderContentType, e.ContentType)
		}
		size := int(e.Size)
		if size <= 0 {
			size = -1
		}
		// The response closes rc once the body has been written.
		return c.Status(fiber.StatusOK).SendStream(rc, size)
	}
}

// EvidenceURL returns a presigned download URL valid for ttl.
//
// @Summary  Presigned evidence URL
// @Tags     disputes
// @Produce  json
// @Param    id         path string true "dispute id"
// @Param    evidenceId path string true "evidence id"
// @Success  200 {object} map[string]string
// @Failure  404 {object} errorPayload
// @Router   /disputes/{id}/evidence/{evidenceId}/url [get]
func EvidenceURL(svc service.DisputeService, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.EvidenceURL(c.UserContext(), c.Params("id"), c.Params("evidenceId"), ttl)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"url":        u,
			"expires_in": int(ttl.Seconds()),
		})
	}
}

// SubmitDispute sends the collected evidence to the processor.
//
// @Summary  Submit dispute evidence
// @Tags     disputes
// @Produce  json
// @Param    id path string true "dispute id"
// @Success  200 {object} processor.DisputeEvidence
// @Failure  409 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /disputes/{id}/submit [post]
func SubmitDispute(svc service.DisputeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ev, err := svc.Submit(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(ev)
	}
}
