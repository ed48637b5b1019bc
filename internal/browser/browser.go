// Package browser defines the actuator port the pipeline drives. The
// concrete browser automation lives behind a local bridge process; this
// package only fixes the capability surface.
package browser

import "context"

// Driver is the browser actuator. Boolean-returning actions signal soft
// failure (element not found, click swallowed by the page) and are the
// retry candidates; errors mean the bridge itself misbehaved.
type Driver interface {
	// Open navigates the browser session to the given url.
	Open(ctx context.Context, url string) error
	// ClickViewProfile opens the next candidate profile. False means no
	// profile could be located to view.
	ClickViewProfile(ctx context.Context) (bool, error)
	// ReadProfileText returns the visible text of the open profile.
	ReadProfileText(ctx context.Context) (string, error)
	// FocusMessageBox places the cursor into the outreach message box.
	FocusMessageBox(ctx context.Context) (bool, error)
	// FillMessage types the message into the focused box.
	FillMessage(ctx context.Context, text string) (bool, error)
	// Send submits the message.
	Send(ctx context.Context) (bool, error)
	// VerifySent confirms the message actually left the compose box.
	VerifySent(ctx context.Context) (bool, error)
	// Skip advances past the current candidate without acting.
	Skip(ctx context.Context) error
	// Close tears down the browser session.
	Close() error
}
