package gallery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// card is a single preview shown on the index page.
type card struct {
	Title   string
	Date    string
	Slug    string
	Image   string
	Missing bool
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Preview images</title>
<style>
body { font-family: system-ui, sans-serif; background: #1e1e1e; color: #ddd; margin: 24px; }
.grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(360px, 1fr)); gap: 24px; }
figure { margin: 0; }
img { width: 100%; aspect-ratio: 1200 / 630; border: 1px solid #333; }
.missing { aspect-ratio: 1200 / 630; display: flex; align-items: center; justify-content: center; border: 1px dashed #555; color: #888; }
figcaption small { color: #888; display: block; }
</style>
</head>
<body>
`

// indexPage lists every post with its preview image.
func indexPage(cards []card) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(pageHead)
		fmt.Fprintf(&buf, "<h1>Preview images (%d)</h1>\n", len(cards))
		if len(cards) == 0 {
			buf.WriteString("<p>No posts found.</p>\n")
		} else {
			buf.WriteString("<div class=\"grid\">\n")
			for _, c := range cards {
				buf.WriteString("<figure>\n")
				if c.Missing {
					fmt.Fprintf(&buf, "<div class=\"missing\">%s not rendered</div>\n", templ.EscapeString(c.Image))
				} else {
					fmt.Fprintf(&buf, "<a href=\"%[1]s\"><img src=\"%[1]s\" alt=\"%[2]s\" loading=\"lazy\"></a>\n",
						templ.EscapeString("/images/"+url.PathEscape(c.Image)), templ.EscapeString(c.Title))
				}
				fmt.Fprintf(&buf, "<figcaption>%s<small>%s · %s</small></figcaption>\n",
					templ.EscapeString(c.Title), templ.EscapeString(c.Date), templ.EscapeString(c.Slug))
				buf.WriteString("</figure>\n")
			}
			buf.WriteString("</div>\n")
		}
		buf.WriteString("</body>\n</html>\n")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func render(c echo.Context, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
