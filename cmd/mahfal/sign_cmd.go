package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/canonicalize"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/crypto"
)

// runSignCmd implements `mahfal sign`: it prints the headers a lead
// intake receiver expects for an arbitrary JSON payload.
func runSignCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("sign", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		file       string
		configPath string
		timestamp  int64
		showBody   bool
		jsonOutput bool
	)

	cmd.StringVar(&file, "file", "", "Path to a JSON payload (REQUIRED)")
	cmd.StringVar(&configPath, "config", "", "Optional YAML config file")
	cmd.Int64Var(&timestamp, "timestamp", 0, "Unix seconds to sign with (default: now)")
	cmd.BoolVar(&showBody, "body", false, "Also print the canonical body and its SHA-256")
	cmd.BoolVar(&jsonOutput, "json", false, "Output headers as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --file is required")
		return 2
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if !json.Valid(raw) {
		_, _ = fmt.Fprintf(stderr, "Error: %s is not valid JSON\n", file)
		return 2
	}
	payload := json.RawMessage(raw)

	a, err := setup(context.Background(), setupOptions{configPath: configPath}, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	signer, err := crypto.NewHMACSigner([]byte(a.cfg.APISecret))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v (set MAHFAL_API_SECRET)\n", err)
		return 2
	}

	var headers *crypto.SignedHeaders
	if timestamp > 0 {
		headers, err = signer.SignAt(payload, timestamp)
	} else {
		headers, err = signer.Sign(payload)
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if jsonOutput {
		out := headers.Map()
		if showBody {
			body, digest, err := canonicalBody(payload)
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
			out["body"] = body
			out["bodySha256"] = digest
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return 1
		}
		return 0
	}

	_, _ = fmt.Fprintf(stdout, "%s: %s\n", crypto.HeaderContentType, headers.ContentType)
	_, _ = fmt.Fprintf(stdout, "%s: %s\n", crypto.HeaderTimestamp, headers.Timestamp)
	_, _ = fmt.Fprintf(stdout, "%s: %s\n", crypto.HeaderSignature, headers.Signature)
	if showBody {
		body, digest, err := canonicalBody(payload)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(stdout, "\n%s\nSHA-256: %s\n", body, digest)
	}
	return 0
}

// canonicalBody returns the exact bytes a receiver verifies and their
// digest, which matches the body_sha256 the intake client logs.
func canonicalBody(payload json.RawMessage) (string, string, error) {
	body, err := canonicalize.JCSString(payload)
	if err != nil {
		return "", "", err
	}
	digest, err := canonicalize.CanonicalHash(payload)
	if err != nil {
		return "", "", err
	}
	return body, digest, nil
}
