// Package ansi holds the terminal colour codes used for request logging
// and the CLI renderer.
package ansi

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray
	Bold    = "\033[1m"

	RedInverse    = "\033[7;31m"
	GreenInverse  = "\033[7;32m"
	YellowInverse = "\033[7;33m"
	BlueInverse   = "\033[7;34m"

	ResetColor = "\033[0m" // Reset to default color
)

var MethodColors = map[string]string{
	"GET":    Green,
	"POST":   Blue,
	"PUT":    Cyan,
	"DELETE": Yellow,
	"PATCH":  Magenta,
}

// Wrap colours s, or returns it untouched when enabled is false
func Wrap(enabled bool, colour, s string) string {
	if !enabled || colour == "" {
		return s
	}
	return colour + s + ResetColor
}
