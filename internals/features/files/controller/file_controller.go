package controller

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"bookshelf_backend/internals/features/files/dto"
	helper "bookshelf_backend/internals/helpers"
	ossHelper "bookshelf_backend/internals/helpers/oss"
)

const HeaderContentType = "X-Content-Type"

type FileController struct {
	OSS *ossHelper.OSSService // nil when storage is not configured
	Now func() time.Time
}

func NewFileController(svc *ossHelper.OSSService) *FileController {
	return &FileController{OSS: svc, Now: time.Now}
}

func (fc *FileController) unavailable(c *fiber.Ctx) error {
	return helper.JsonError(c, fiber.StatusServiceUnavailable, ossHelper.ErrNotConfigured.Error())
}

// POST /api/files  body {key}, header x-content-type
func (fc *FileController) PresignUpload(c *fiber.Ctx) error {
	if fc.OSS == nil {
		return fc.unavailable(c)
	}
	contentType := strings.TrimSpace(c.Get(HeaderContentType))
	if contentType == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "x-content-type header is required")
	}
	var req dto.PresignRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	url, key, err := fc.OSS.SignPutURL(req.Key, contentType)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	log.Printf("[INFO] [FILES][PUT] key=%s type=%s", key, contentType)
	return helper.JsonOK(c, dto.PresignResponse{
		URL:         url,
		Method:      fiber.MethodPut,
		Key:         key,
		ObjectURL:   fc.OSS.PublicURL(key),
		ContentType: contentType,
		ExpiresAt:   fc.OSS.ExpiresAt(fc.Now()),
	})
}

// GET /api/files?key=
func (fc *FileController) PresignDownload(c *fiber.Ctx) error {
	if fc.OSS == nil {
		return fc.unavailable(c)
	}
	raw := strings.TrimSpace(c.Query("key"))
	if raw == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "key query parameter is required")
	}

	url, key, err := fc.OSS.SignGetURL(raw)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, dto.PresignResponse{
		URL:       url,
		Method:    fiber.MethodGet,
		Key:       key,
		ObjectURL: fc.OSS.PublicURL(key),
		ExpiresAt: fc.OSS.ExpiresAt(fc.Now()),
	})
}
