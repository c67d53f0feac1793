package handlers

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/ingestion"
	"github.com/pdf-agent/backend/internal/query"
	"github.com/pdf-agent/backend/pkg/logger"
	"github.com/pdf-agent/backend/pkg/utils"
)

type DocumentHandler struct {
	locator query.Locator
}

func NewDocumentHandler(locator query.Locator) *DocumentHandler {
	return &DocumentHandler{
		locator: locator,
	}
}

type documentInfo struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256,omitempty"`
}

// ListDocuments returns the PDFs a question would currently be answered from.
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	paths, err := h.locator.Locate(c.UserContext())
	if err != nil {
		logger.Warn("Failed to list documents", zap.Error(err))
		return c.Status(StatusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	documents := make([]documentInfo, 0, len(paths))
	for _, p := range paths {
		doc := documentInfo{Name: ingestion.DocumentName(p), Title: ingestion.Title(p), Path: p}
		if info, err := os.Stat(p); err == nil {
			doc.SizeBytes = info.Size()
		}
		if sum, err := utils.HashFile(p); err == nil {
			doc.SHA256 = sum
		} else {
			logger.Debug("Failed to hash document", zap.String("pdf", doc.Name), zap.Error(err))
		}
		documents = append(documents, doc)
	}

	return c.JSON(fiber.Map{
		"folder":    h.locator.Folder(),
		"count":     len(documents),
		"documents": documents,
	})
}
