// Package bundler prepares page assets with esbuild's Go API (in-process, no
// child processes).
package bundler

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// MinifyCSS minifies a stylesheet so it can be inlined into a <style> block.
// name is only used in error messages.
func MinifyCSS(name, src string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:           api.LoaderCSS,
		Sourcefile:       name,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LogLevel:         api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		return "", fmt.Errorf("esbuild errors:\n%s", formatMessages(result.Errors))
	}

	return strings.TrimSpace(string(result.Code)), nil
}

func formatMessages(messages []api.Message) string {
	var msgs []string
	for _, msg := range messages {
		text := msg.Text
		if msg.Location != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
		}
		msgs = append(msgs, text)
	}
	return strings.Join(msgs, "\n")
}
