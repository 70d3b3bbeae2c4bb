package bundler

import (
	"errors"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var (
	// ErrBuildFailed indicates the engine reported errors
	ErrBuildFailed = errors.New("build failed")
	// ErrNoEntries indicates the config declares nothing to build
	ErrNoEntries = errors.New("no entry points declared")
	// ErrUnsupportedHandler indicates a rule names a handler the engine cannot apply
	ErrUnsupportedHandler = errors.New("unsupported handler")
	// ErrUnsupportedFilename indicates the output filename pattern uses a placeholder the engine cannot honour
	ErrUnsupportedFilename = errors.New("unsupported output filename")
)

// BuildError carries the engine messages of a failed build.
type BuildError struct {
	Messages []string
}

func (e *BuildError) Error() string {
	if len(e.Messages) == 0 {
		return ErrBuildFailed.Error()
	}
	return ErrBuildFailed.Error() + ": " + strings.Join(e.Messages, "; ")
}

func (e *BuildError) Unwrap() error {
	return ErrBuildFailed
}

func newBuildError(msgs []api.Message) *BuildError {
	be := &BuildError{Messages: make([]string, 0, len(msgs))}
	for _, m := range msgs {
		be.Messages = append(be.Messages, formatMessage(m))
	}
	return be
}

func formatMessage(m api.Message) string {
	var b strings.Builder
	if m.Location != nil {
		b.WriteString(m.Location.File)
		b.WriteString(": ")
	}
	if m.PluginName != "" {
		b.WriteString("[" + m.PluginName + "] ")
	}
	b.WriteString(m.Text)
	return b.String()
}
