// Command parse-text runs the offline extractors on local files and prints JSON.
//
//	parse-text rfp <file>
//	parse-text email <file...>
//	parse-text compare <file...>
//
// Files ending in .eml are read as RFC 5322 messages; anything else is plain text.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rfpdesk/api/internal/models"
	"rfpdesk/api/internal/services"
)

const usage = "Usage: parse-text rfp <file> | email <file...> | compare <file...>"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) < 2 {
		return errors.New(usage)
	}
	mode, files := args[0], args[1:]

	var out any
	switch mode {
	case "rfp":
		if len(files) != 1 {
			return errors.New(usage)
		}
		data, err := os.ReadFile(files[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", files[0], err)
		}
		out = services.GenerateStructuredRFP(string(data))
	case "email", "compare":
		proposals := make([]models.StructuredProposal, 0, len(files))
		for _, path := range files {
			p, err := parseReply(path)
			if err != nil {
				return err
			}
			proposals = append(proposals, p)
		}
		if mode == "email" {
			out = proposals
		} else {
			out = services.CompareProposals(models.StructuredRFP{}, proposals)
		}
	default:
		return fmt.Errorf("unknown mode %q\n%s", mode, usage)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parseReply(path string) (models.StructuredProposal, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.StructuredProposal{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(path), ".eml") {
		data, err := io.ReadAll(f)
		if err != nil {
			return models.StructuredProposal{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return services.ParseVendorEmail(string(data)), nil
	}

	msg, err := services.ParseMessage(f)
	if err != nil {
		return models.StructuredProposal{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p := services.ParseVendorEmail(msg.Body)
	p.Email = msg.From
	return p, nil
}
