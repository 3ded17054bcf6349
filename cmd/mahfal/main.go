package main

import (
	"fmt"
	"io"
	"os"
)

// Version is set at build time.
var Version = "0.1.0"

// Dispatcher
func main() {
	os.Exit(Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "wizard":
		return runWizardCmd(args[2:], stdin, stdout, stderr)
	case "submit":
		return runSubmitCmd(args[2:], stdout, stderr)
	case "sign":
		return runSignCmd(args[2:], stdout, stderr)
	case "draft":
		return runDraftCmd(args[2:], stdout, stderr)
	case "version", "--version":
		_, _ = fmt.Fprintf(stdout, "mahfal %s\n", Version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

// ANSI Colors
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
	ColorCyan  = "\033[36m"
	ColorGray  = "\033[37m"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%sMahfal Concierge %s%s\n", ColorBold+ColorCyan, Version, ColorReset)
	fmt.Fprintf(w, "%sTell us about your event. We send a shortlist within 24 hours.%s\n", ColorGray, ColorReset)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%sUSAGE:%s\n", ColorBold, ColorReset)
	fmt.Fprintln(w, "  mahfal <command> [flags]")
	fmt.Fprintln(w, "")

	printSection(w, "REQUESTS")
	printCommand(w, "wizard", "Plan an event step by step (resumes your draft)")
	printCommand(w, "submit", "Submit a request from a YAML/JSON file (--file)")

	printSection(w, "UTILITIES")
	printCommand(w, "sign", "Print signed headers for a payload (--file, --timestamp)")
	printCommand(w, "draft", "Show or clear the saved draft (show|clear)")
	printCommand(w, "version", "Show version information")
	printCommand(w, "help", "Show this help")
	fmt.Fprintln(w, "")

	printSection(w, "ENVIRONMENT")
	fmt.Fprintln(w, "  MAHFAL_API_SECRET (required), MAHFAL_API_URL, MAHFAL_DRAFT_STORE,")
	fmt.Fprintln(w, "  MAHFAL_DRAFT_DSN, LOG_LEVEL, LOG_FORMAT, OTEL_EXPORTER_OTLP_ENDPOINT")
	fmt.Fprintln(w, "")
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s%s:%s\n", ColorBold+ColorCyan, title, ColorReset)
}

func printCommand(w io.Writer, name, desc string) {
	fmt.Fprintf(w, "  %s%-10s%s %s\n", ColorGreen, name, ColorReset, desc)
}
