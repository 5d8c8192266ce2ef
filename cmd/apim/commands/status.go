package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

// ConfigureColor turns colored status lines off for --no-color or when
// stdout is not a terminal.
func ConfigureColor() {
	color.NoColor = viper.GetBool("no_color") || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	_, _ = successColor.Fprintf(w, "OK %s\n", fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...interface{}) {
	_, _ = infoColor.Fprintf(w, "%s\n", fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(w, "Warning: %s\n", fmt.Sprintf(format, args...))
}
