package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "doctools/docs"
	"doctools/internal/http/middleware"
	"doctools/internal/service"
)

// Deps holds what the routes need. Health lists optional dependencies probed by /health.
type Deps struct {
	Passwords     service.PasswordService
	Unminify      service.UnminifyService
	Activities    service.ActivityService
	Health        []Pinger
	PublicBaseURL string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: validation and processing live in the services.
func RegisterRoutes(app *fiber.App, d Deps) {
	registerDocs(app)

	app.Get("/health", HealthCheck(d.Health...))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Post("/remove-password", RemovePassword(d.Passwords))

	download := api.Group("/download", middleware.NoStore())
	download.Get("/:file_id", DownloadFile(d.Passwords))
	download.Get("/:file_id/qr", DownloadQR(d.Passwords, d.PublicBaseURL))

	api.Post("/unminify", Unminify(d.Unminify))
	app.Post("/unminify/process", Unminify(d.Unminify))

	api.Get("/activity", ListActivity(d.Activities))
}

func registerDocs(app *fiber.App) {
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Type("html").SendString(docsPage)
	})

	// The generated doc leaves host and schemes empty, so the UI targets whichever
	// host served it.
	app.Get("/swagger/*", swagger.HandlerDefault)
}

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>doctools API</title>
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
