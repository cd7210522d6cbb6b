package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/service"
)

type generateOptions struct {
	input   string
	output  string
	format  string
	maxDays int
}

func newGenerateCommand() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a plan from a request file without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.input, "file", "f", "-", "request JSON file, - for stdin")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&opts.format, "format", "json", "json, csv or pdf")
	cmd.Flags().IntVar(&opts.maxDays, "max-days", 0, "override the maximum plan length in days")
	return cmd
}

func runGenerate(ctx context.Context, opts generateOptions, stdin io.Reader, stdout io.Writer) error {
	raw, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}
	var req dto.StudyPlanRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	svc := service.NewStudyPlanService(nil, nil, nil, nil, zap.NewNop(), service.StudyPlanConfig{MaxDays: opts.maxDays})

	var body []byte
	switch format := strings.ToLower(opts.format); format {
	case "json":
		plan, _, err := svc.Generate(ctx, req)
		if err != nil {
			return err
		}
		if body, err = json.MarshalIndent(plan, "", "  "); err != nil {
			return err
		}
		body = append(body, '\n')
	default:
		file, err := svc.Export(ctx, req, format)
		if err != nil {
			return err
		}
		body = file.Body
	}
	return writeOutput(opts.output, stdout, body)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, stdout io.Writer, body []byte) error {
	if path == "-" || path == "" {
		_, err := stdout.Write(body)
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
