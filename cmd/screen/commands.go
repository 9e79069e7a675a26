package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"adverse-media-agent/internal/common/document"
	"adverse-media-agent/internal/common/errors"
	"adverse-media-agent/internal/models"
	"adverse-media-agent/internal/screening"
)

const reportBanner = `
================================================================================
                        ADVERSE MEDIA REPORT
================================================================================
`

const reportFooter = "================================================================================\n"

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "screen",
		Short:         "Adverse-media screening for KYC documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetIn(a.stdin)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "text-generation backend: ollama or groq")

	root.AddCommand(
		newExtractCmd(a),
		newSearchCmd(a),
		newAnalyzeCmd(a),
		newRunCmd(a),
		newUsageCmd(a),
	)
	return root
}

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file.pdf|file.txt|->",
		Short: "Extract the subject and financial context from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := a.agent()
			if err != nil {
				return err
			}
			text, err := a.readDocument(agent, args[0])
			if err != nil {
				return err
			}
			if err := a.consume(cmd.Context()); err != nil {
				return err
			}
			entity, err := agent.Extract(cmd.Context(), text)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entity)
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <entity>",
		Short: "Search adverse media for an entity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := strings.TrimSpace(strings.Join(args, " "))
			if entity == "" {
				return errors.NewInvalidInputError("entity name must not be blank")
			}
			agent, err := a.agent()
			if err != nil {
				return err
			}
			if err := a.consume(cmd.Context()); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), agent.Search(cmd.Context(), entity))
		},
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var entity, contextFile string

	cmd := &cobra.Command{
		Use:   "analyze --entity <name> [--context-file <file>]",
		Short: "Search adverse media for an entity and write a risk report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity = strings.TrimSpace(entity)
			if entity == "" {
				return errors.NewInvalidInputError("--entity must not be blank")
			}
			agent, err := a.agent()
			if err != nil {
				return err
			}
			documentContext := screening.NoDocumentContext
			if contextFile != "" {
				documentContext, err = a.readDocument(agent, contextFile)
				if err != nil {
					return err
				}
			}
			if err := a.consume(cmd.Context()); err != nil {
				return err
			}

			bundle := agent.Search(cmd.Context(), entity)
			reportSearchOutcome(cmd.ErrOrStderr(), bundle)
			report, err := agent.Analyze(cmd.Context(), entity, documentContext, bundle.Results)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, bundle.Images)
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "person or company to screen")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "KYC document (PDF or text) used as context; omit to screen the entity alone")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file.pdf>",
		Short: "Extract, search and analyze a document end to end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			progress := cmd.ErrOrStderr()

			agent, err := a.agent()
			if err != nil {
				return err
			}
			text, err := a.readDocument(agent, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(progress, "[1/3] Extracting entity from document...")
			if err := a.consume(ctx); err != nil {
				return err
			}
			extracted, err := agent.Extract(ctx, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(progress, "      Entity identified: %s\n", extracted.SubjectName)

			fmt.Fprintln(progress, "[2/3] Searching OSINT sources for adverse media...")
			if err := a.consume(ctx); err != nil {
				return err
			}
			bundle := agent.Search(ctx, extracted.SubjectName)
			fmt.Fprintf(progress, "      Retrieved %d result(s).\n", len(bundle.Results))
			reportSearchOutcome(progress, bundle)

			fmt.Fprintln(progress, "[3/3] Analyzing risk...")
			report, err := agent.Analyze(ctx, extracted.SubjectName, text, bundle.Results)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, bundle.Images)
		},
	}
}

func newUsageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show the search account's usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := a.agent()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), agent.Usage(cmd.Context()))
		},
	}
}

// readDocument returns the text of path, or of stdin when path is "-".
func (a *app) readDocument(agent screener, path string) (string, error) {
	if path != "-" {
		return agent.ReadDocument(path)
	}

	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", errors.NewInvalidInputError(fmt.Sprintf("read stdin: %v", err))
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		text, err := document.ReadPDFBytes(data)
		if err != nil {
			return "", errors.NewInvalidInputError(fmt.Sprintf("could not read PDF from stdin: %v", err))
		}
		data = []byte(text)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.NewEmptyDocumentError()
	}
	return text, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeReport prints the report inside the banner, followed by any related
// image URLs from the search.
func writeReport(w io.Writer, report string, images []string) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n%s", reportBanner, report, reportFooter); err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nRelated images:"); err != nil {
		return err
	}
	for _, img := range images {
		if _, err := fmt.Fprintf(w, "- %s\n", img); err != nil {
			return err
		}
	}
	return nil
}

func reportSearchOutcome(w io.Writer, bundle models.SearchBundle) {
	if bundle.IsEmpty() {
		fmt.Fprintln(w, "      No adverse media found.")
	}
}
