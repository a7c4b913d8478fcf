// Command normalize runs the ai_parse_document response normalizer over a
// saved raw response, without needing a warehouse. Reads the response from a
// file argument or stdin and prints a summary, the plain text, or the full
// normalized document as JSON.
// Usage: go run ./cmd/normalize [-summary|-text|-json] [response.json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"docsight/internal/domain"
	"docsight/internal/normalize"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		asText    bool
		asJSON    bool
		asSummary bool
	)

	flag.BoolVar(&asText, "text", false, "print the concatenated plain text")
	flag.BoolVar(&asJSON, "json", false, "print the normalized document as indented JSON")
	flag.BoolVar(&asSummary, "summary", false, "print an element summary (default)")
	flag.Parse()

	data, err := readInput(flag.Arg(0))
	if err != nil {
		return err
	}

	doc := normalize.Normalize(string(data))

	switch {
	case asJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding normalized document: %w", err)
		}
		fmt.Println(string(out))
	case asText:
		fmt.Println(doc.PlainText)
	default:
		printSummary(doc)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func printSummary(doc *domain.NormalizedDocument) {
	structured := "no"
	if doc.IsStructured {
		structured = "yes"
	}
	fmt.Printf("structured:     %s\n", structured)
	fmt.Printf("elements:       %d\n", len(doc.Elements))
	fmt.Printf("tables:         %d\n", len(doc.Tables))
	fmt.Printf("figures:        %d\n", len(doc.Figures))
	fmt.Printf("headers:        %d\n", len(doc.Headers))

	groups := normalize.GroupByPage(doc.Elements)
	fmt.Printf("pages:          %d\n", len(groups.Pages))
	if len(groups.NoPage) > 0 {
		fmt.Printf("no-page elems:  %d\n", len(groups.NoPage))
	}

	counts := make(map[string]int)
	for _, el := range doc.Elements {
		counts[el.TypeLabel()]++
	}
	if len(counts) > 0 {
		labels := make([]string, 0, len(counts))
		for label := range counts {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			if counts[labels[i]] != counts[labels[j]] {
				return counts[labels[i]] > counts[labels[j]]
			}
			return labels[i] < labels[j]
		})
		fmt.Println("breakdown:")
		for _, label := range labels {
			fmt.Printf("  %-10s %d\n", label, counts[label])
		}
	}

	if len(doc.Metadata) > 0 {
		keys := make([]string, 0, len(doc.Metadata))
		for k := range doc.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Printf("metadata keys:  %s\n", strings.Join(keys, ", "))
	}

	if doc.PlainText != "" {
		preview := doc.PlainText
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		fmt.Printf("text preview:   %s\n", strings.ReplaceAll(preview, "\n", " "))
	}
}
