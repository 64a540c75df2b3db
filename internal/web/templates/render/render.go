// Package render turns components into strings for transports that cannot
// stream them, such as SSE data frames.
package render

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// ToString renders c into a string
func ToString(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
