package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"guideapi/internal/http/middleware"
	"guideapi/internal/model"
	"guideapi/internal/service"
)

// createGuideRequest is the body for POST /guides.
type createGuideRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// editGuideRequest is the body for PUT /guides/:id. BaseVersion is the
// version the client last saw; an outdated value is rejected with 409.
type editGuideRequest struct {
	Content     string `json:"content"`
	BaseVersion int    `json:"base_version"`
}

// rollbackGuideRequest is the body for POST /guides/:id/rollback.
type rollbackGuideRequest struct {
	TargetVersion int `json:"target_version"`
	BaseVersion   int `json:"base_version"`
}

// actorFromCtx pulls the gateway-resolved actor out of locals. Handlers
// behind the AuthContext middleware can rely on it being present; a miss
// means the route was mounted without the middleware.
func actorFromCtx(c *fiber.Ctx) (model.Actor, error) {
	actor, ok := middleware.ActorFromCtx(c)
	if !ok {
		return model.Actor{}, writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
	}
	return actor, nil
}

// guideID validates the :id path parameter.
func guideID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	return id, nil
}

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe with no dependency checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// CreateGuide makes a new draft guide owned by the actor.
func CreateGuide(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}

		var body createGuideRequest
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		g, err := svc.Create(c.UserContext(), actor, body.Title, body.Content)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	}
}

// ListGuides lists live guides in the actor's tenant with limit & offset.
func ListGuides(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}

		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), actor, limit, offset)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetGuide returns a single guide by ID.
func GetGuide(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := guideID(c)
		if err != nil {
			return err
		}

		g, err := svc.Get(c.UserContext(), actor, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(g)
	}
}

// EditGuide replaces the content of the actor's own guide.
func EditGuide(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := guideID(c)
		if err != nil {
			return err
		}

		var body editGuideRequest
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		g, err := svc.Edit(c.UserContext(), actor, id, body.Content, body.BaseVersion)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(g)
	}
}

// SubmitGuide moves the actor's draft guide into review.
func SubmitGuide(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := guideID(c)
		if err != nil {
			return err
		}

		g, err := svc.Submit(c.UserContext(), actor, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(g)
	}
}

// ApproveGuide resolves a pending review as approved. Reviewer-only.
func ApproveGuide(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := guideID(c)
		if err != nil {
			return err
		}

		g, err := svc.Approve(c.UserContext(), actor, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(g)
	}
}

// RejectGuide resolves a pending review as rejected. Reviewer-only.
func RejectGuide(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := guideID(c)
		if err != nil {
			return err
		}

		g, err := svc.Reject(c.UserContext(), actor, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(g)
	}
}

// RollbackGuide restores an earlier content snapshot under a new version.
func RollbackGuide(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := guideID(c)
		if err != nil {
			return err
		}

		var body rollbackGuideRequest
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		g, err := svc.Rollback(c.UserContext(), actor, id, body.TargetVersion, body.BaseVersion)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(g)
	}
}

// RemoveGuide tombstones a guide. Reviewer-only.
func RemoveGuide(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := guideID(c)
		if err != nil {
			return err
		}

		if err := svc.Remove(c.UserContext(), actor, id); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetGuideHistory returns the audit trail, most recent first. Reviewer-only.
func GetGuideHistory(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := guideID(c)
		if err != nil {
			return err
		}

		entries, err := svc.GetHistory(c.UserContext(), actor, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": entries, "total": len(entries)})
	}
}

// ExportGuideHistory archives the audit trail to object storage and
// returns a presigned download URL. Reviewer-only.
func ExportGuideHistory(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := guideID(c)
		if err != nil {
			return err
		}

		url, err := svc.ExportHistory(c.UserContext(), actor, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.WorkflowService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Everything under /guides requires the gateway identity headers.
	guides := app.Group("/guides", middleware.AuthContext())
	guides.Post("/", CreateGuide(svc))
	guides.Get("/", ListGuides(svc))
	guides.Get("/:id", GetGuide(svc))
	guides.Put("/:id", EditGuide(svc))
	guides.Delete("/:id", RemoveGuide(svc))
	guides.Post("/:id/submit", SubmitGuide(svc))
	guides.Post("/:id/approve", ApproveGuide(svc))
	guides.Post("/:id/reject", RejectGuide(svc))
	guides.Post("/:id/rollback", RollbackGuide(svc))
	guides.Get("/:id/history", GetGuideHistory(svc))
	guides.Post("/:id/history/export", ExportGuideHistory(svc))
}
