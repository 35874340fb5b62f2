package executil

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime"
)

// ErrUnsupportedURL is returned when a link is not an absolute http(s) URL.
var ErrUnsupportedURL = errors.New("unsupported url")

// OpenCommand returns the command that opens target in the default browser
// on the given operating system.
func OpenCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// Opener launches links in the user's browser.
type Opener struct {
	Exec Executor
	GOOS string
}

// NewOpener creates an Opener for the running platform.
func NewOpener(e Executor) *Opener {
	return &Opener{Exec: e, GOOS: runtime.GOOS}
}

// Open validates target and hands it to the platform opener. Only absolute
// http and https URLs are accepted.
func (o *Opener) Open(ctx context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedURL, target)
	}

	cmd, args := OpenCommand(o.GOOS, u.String())
	if _, err := o.Exec.Run(ctx, cmd, args...); err != nil {
		return fmt.Errorf("open %s: %w", u.Redacted(), err)
	}
	return nil
}
