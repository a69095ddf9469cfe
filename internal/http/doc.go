// Package http provides optional HTTP adapters for media credit operations.
//
// Routes mount under the configured base path (default /api):
//   - POST {base}/media-credit/update rewrites the credit around an image in
//     the posted content and returns the new content.
//   - POST {base}/media-credit/render expands credit shortcodes to HTML.
//   - POST {base}/media-credit/attachments/{id}/credit stores a credit on an
//     attachment and propagates it into the parent post.
//
// Host applications register the handlers on their own mux.
package http
