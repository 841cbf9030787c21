// Package web serves the single-page complaint form.
package web

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed index.html
var indexHTML []byte

// Index serves the form page. The page talks to the widget API.
func Index(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.Send(indexHTML)
}
