// Package branding keeps every user-visible message in one voice: the
// boxed header/footer, the spinner frames the acknowledgement phase cycles
// through, and the error/success wrappers.
package branding

import "strings"

const (
	Header = "╭━━━━━━━━━━━━━━━━━━━━━━━━━━╮\n│ **VBot Music By Vzoel Fox's** │\n╰━━━━━━━━━━━━━━━━━━━━━━━━━━╯"
	Footer = "╭━━━━━━━━━━━━━━━━━━━━━━━━━━╮\n│ **2025© Vzoel Fox's Lutpan** │\n│      **@VZLfxs**      │\n╰━━━━━━━━━━━━━━━━━━━━━━━━━━╯"
)

// LoadingFrames are cycled by the dispatch pipeline while a slow command
// is still working.
var LoadingFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Wrap surrounds content with the bot header and footer.
func Wrap(content string) string {
	return strings.Join([]string{Header, content, Footer}, "\n\n")
}

// WrapHeader surrounds content with the header only.
func WrapHeader(content string) string {
	return strings.Join([]string{Header, content}, "\n\n")
}

// Error formats an error message, header but no footer.
func Error(msg string) string {
	return WrapHeader("**Error**\n\n" + msg)
}

// Success formats a success message, header but no footer.
func Success(msg string) string {
	return WrapHeader("**Success**\n\n" + msg)
}

// Loading renders one spinner frame in front of text.
func Loading(frame int, text string) string {
	return LoadingFrames[frame%len(LoadingFrames)] + " **" + text + "**"
}
