package provision

import "context"

// Navigator attaches to a remote browser over CDP. Implementations must be
// safe for concurrent use; each Connect call stands alone.
type Navigator interface {
	// Connect attaches to the browser behind connectURL and returns its
	// default page.
	Connect(ctx context.Context, connectURL string) (Page, error)
}

// Page is an attached remote page.
type Page interface {
	// Navigate drives the page to url and returns once the DOM is parsed.
	// It does not wait for subresources to finish loading.
	Navigate(ctx context.Context, url string) error

	// Detach drops the CDP connection. The remote page keeps running; the
	// provider owns its lifetime.
	Detach()
}
