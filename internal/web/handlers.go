package web

import (
	"errors"
	"strings"

	"github.com/forPelevin/ytnotes/internal/domain/transcript"
	"github.com/forPelevin/ytnotes/internal/usecase"
	"github.com/gofiber/fiber/v2"
)

type notesRequest struct {
	URL string `json:"url" form:"url" query:"url" validate:"required,max=2048"`
}

// Index renders the form. With ?url= it also shows the thumbnail preview.
func (h *Handler) Index(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("url"))
	d := pageData{URL: raw}
	if raw != "" {
		n, err := h.svc.Preview(raw)
		if err != nil {
			d.Error = err.Error()
		} else {
			d.Notes = n
		}
	}
	return h.page(c, fiber.StatusOK, d)
}

// NotesPage handles the form submit. Failures are shown inline and keep the
// form filled in.
func (h *Handler) NotesPage(c *fiber.Ctx) error {
	var req notesRequest
	if err := c.BodyParser(&req); err != nil {
		return h.page(c, fiber.StatusBadRequest, pageData{Error: "Invalid form submission"})
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := h.validate.Struct(req); err != nil {
		return h.page(c, fiber.StatusBadRequest, pageData{URL: req.URL, Error: usecase.ErrInvalidURL.Error()})
	}

	d := pageData{URL: req.URL}
	n, err := h.svc.Notes(c.UserContext(), req.URL)
	d.Notes = n
	if err != nil {
		requestLog(c, h.log).WithError(err).Warn("notes failed")
		d.Error = err.Error()
		return h.page(c, fiber.StatusOK, d)
	}

	d.Summary, err = renderMarkdown(n.Summary)
	if err != nil {
		return err
	}
	return h.page(c, fiber.StatusOK, d)
}

func (h *Handler) PreviewAPI(c *fiber.Ctx) error {
	var req notesRequest
	if err := c.QueryParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Invalid query: "+err.Error())
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := h.validate.Struct(req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Validation failed: "+strings.Join(formatValidationErrors(err), "; "))
	}
	n, err := h.svc.Preview(req.URL)
	if err != nil {
		return respondWithError(c, statusFor(err), err.Error())
	}
	return respondWithJSON(c, fiber.StatusOK, n)
}

func (h *Handler) NotesAPI(c *fiber.Ctx) error {
	var req notesRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := h.validate.Struct(req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Validation failed: "+strings.Join(formatValidationErrors(err), "; "))
	}

	n, err := h.svc.Notes(c.UserContext(), req.URL)
	if err != nil {
		requestLog(c, h.log).WithError(err).Warn("notes failed")
		return respondWithError(c, statusFor(err), err.Error())
	}
	return respondWithJSON(c, fiber.StatusOK, n)
}

func (h *Handler) page(c *fiber.Ctx, status int, d pageData) error {
	body, err := renderPage(d)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidURL):
		return fiber.StatusBadRequest
	case errors.Is(err, transcript.ErrNoTranscript):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadGateway
	}
}
