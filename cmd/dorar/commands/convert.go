package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/dorar/internal/output"
	"github.com/jmylchreest/dorar/pkg/block"
	"github.com/jmylchreest/dorar/pkg/dorar"
	"github.com/jmylchreest/dorar/pkg/footnote"
	"github.com/jmylchreest/dorar/pkg/sanitize"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file...]",
	Short: "Convert saved pages to Markdown",
	Long: `Run the extraction pipeline on local HTML files, or stdin when no file
or "-" is given. Useful to check the output against a saved page.

Examples:
  dorar convert page.html
  dorar convert --articles section.html
  curl -s https://dorar.net/tafseer/1/1 | dorar convert --format yaml`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.Bool("articles", false, "split the page into one block per article")
	flags.String("format", "markdown", "output format: markdown, json, yaml, html (sanitized region only)")
	flags.StringP("out", "O", "", "output file (default: stdout)")
	flags.Bool("compact", false, "write JSON on one line")
}

func runConvert(cmd *cobra.Command, args []string) error {
	initLogger()

	articles, _ := cmd.Flags().GetBool("articles")
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	compact, _ := cmd.Flags().GetBool("compact")

	if len(args) == 0 {
		args = []string{"-"}
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			logError("creating output: %v", err)
			return err
		}
		defer f.Close()
		w = f
	}

	if format == "html" {
		return convertRegions(w, args, articles)
	}

	ex := dorar.New()
	var pages []*dorar.Page
	for _, path := range args {
		raw, err := readInput(path)
		if err != nil {
			logError("%v", err)
			return err
		}
		var page *dorar.Page
		if articles {
			page, err = ex.Articles(raw)
		} else {
			page, err = ex.Content(raw, 1)
		}
		if err != nil {
			logError("%s: %v", path, err)
			return err
		}
		for _, warn := range page.Warnings {
			logInfo("%s: %s", path, warn.Message)
		}
		pages = append(pages, page)
	}

	if format == "markdown" {
		for _, p := range pages {
			if _, err := io.WriteString(w, renderPage(p)); err != nil {
				return err
			}
		}
		return nil
	}

	ow, err := output.NewWriter(w, output.Format(format), output.WithPretty(!compact))
	if err != nil {
		logError("%v", err)
		return err
	}
	for _, p := range pages {
		if err := ow.Write(convertedPage{Title: p.Title, Fallback: p.Fallback, Blocks: p.Blocks}); err != nil {
			return err
		}
	}
	return ow.Close()
}

// convertRegions writes the sanitized region of each input, so selectors
// can be checked against a saved page.
func convertRegions(w io.Writer, args []string, articles bool) error {
	cfg := sanitize.DefaultConfig()
	if articles {
		cfg = sanitize.PresetArticles()
	}
	s := sanitize.New(cfg)
	for _, path := range args {
		raw, err := readInput(path)
		if err != nil {
			logError("%v", err)
			return err
		}
		res, err := s.Sanitize(raw)
		if err != nil {
			logError("%s: %v", path, err)
			return err
		}
		if res.Fallback {
			logInfo("%s: no content pane, showing the body", path)
		}
		out, err := res.HTML()
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, out+"\n"); err != nil {
			return err
		}
	}
	return nil
}

type convertedPage struct {
	Title    string        `json:"title" yaml:"title"`
	Fallback bool          `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Blocks   []block.Block `json:"blocks" yaml:"blocks"`
}

func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// renderPage writes a page as one Markdown document with footnotes
// renumbered across its blocks.
func renderPage(p *dorar.Page) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", p.Title)

	blocks, defs := footnote.NewRenumberer().RenumberAll(p.Blocks)
	for _, b := range blocks {
		if len(blocks) > 1 && b.Heading != "" {
			fmt.Fprintf(&sb, "## %s\n\n", b.Heading)
		}
		if b.Text != "" {
			sb.WriteString(b.Text)
			sb.WriteString("\n\n")
		}
	}
	for _, fn := range defs {
		sb.WriteString(fn.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
