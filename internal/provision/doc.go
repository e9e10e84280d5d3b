// Package provision turns a viewer's timezone into a ready-to-watch
// remote browser session.
//
// The pipeline has four provider-facing stages: create the session in
// the resolved region, connect to its CDP endpoint, navigate the first
// page to the landing URL and wait for the DOM to parse, then fetch the
// fullscreen live view link. A failure at any stage releases whatever
// was already created so paid sessions never leak.
//
// Browser capabilities (viewport, fingerprint, captcha solving) come
// from an embedded YAML profile so they can be reviewed and diffed
// without touching code.
package provision
