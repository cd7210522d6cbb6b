package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	requestSuffix = ".request.json"
	goldenSuffix  = ".plan.json"
)

type replayOptions struct {
	base     string
	prefix   string
	fixtures string
	timeout  time.Duration
	update   bool
}

type replayCase struct {
	Name       string
	Request    []byte
	GoldenPath string
	Golden     []byte
}

type replayResult struct {
	Case          replayCase
	Status        int
	Deterministic bool
	GoldenChecked bool
	GoldenMatch   bool
	Duration      time.Duration
	Err           error
	served        []byte
}

func (r replayResult) failed() bool {
	return r.Err != nil || r.Status != http.StatusOK || !r.Deterministic || (r.GoldenChecked && !r.GoldenMatch)
}

func newReplayCommand() *cobra.Command {
	opts := replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Post request fixtures twice and compare the plans with each other and with golden files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReplay(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.base, "base", "http://localhost:3001", "API base URL")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "/api", "API route prefix")
	cmd.Flags().StringVar(&opts.fixtures, "fixtures", filepath.Join("cmd", "planctl", "testdata"), "directory holding *"+requestSuffix+" files")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP client timeout")
	cmd.Flags().BoolVar(&opts.update, "update", false, "write the served plans as golden files")
	return cmd
}

func runReplay(ctx context.Context, opts replayOptions, out io.Writer) error {
	cases, err := loadCases(opts.fixtures)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: opts.timeout}
	endpoint := strings.TrimRight(opts.base, "/") + path.Join("/", opts.prefix, "study-plan")

	results := make([]replayResult, 0, len(cases))
	var failures int
	for _, c := range cases {
		res := replay(ctx, client, endpoint, c)
		if opts.update && res.Err == nil && res.Status == http.StatusOK && res.Deterministic {
			res.Err = os.WriteFile(c.GoldenPath, append(res.served, '\n'), 0o644)
			res.GoldenChecked, res.GoldenMatch = true, res.Err == nil
		}
		if res.failed() {
			failures++
		}
		results = append(results, res)
	}

	printReport(out, results)
	if failures > 0 {
		return fmt.Errorf("%d of %d fixtures failed", failures, len(cases))
	}
	return nil
}

func loadCases(dir string) ([]replayCase, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+requestSuffix))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no *%s fixtures in %s", requestSuffix, dir)
	}
	sort.Strings(paths)

	cases := make([]replayCase, 0, len(paths))
	for _, file := range paths {
		body, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		c := replayCase{
			Name:       strings.TrimSuffix(filepath.Base(file), requestSuffix),
			Request:    body,
			GoldenPath: strings.TrimSuffix(file, requestSuffix) + goldenSuffix,
		}
		golden, err := os.ReadFile(c.GoldenPath)
		switch {
		case err == nil:
			c.Golden = golden
		case !os.IsNotExist(err):
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

type servedPlan struct {
	status int
	body   []byte
}

// replay posts the fixture twice. Identical requests must yield identical bytes.
func replay(ctx context.Context, client *http.Client, endpoint string, c replayCase) replayResult {
	res := replayResult{Case: c}

	start := time.Now()
	first, err := post(ctx, client, endpoint, c.Request)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	second, err := post(ctx, client, endpoint, c.Request)
	if err != nil {
		res.Err = err
		return res
	}

	res.Status = first.status
	res.Deterministic = first.status == second.status && bytes.Equal(first.body, second.body)
	res.served = first.body
	if c.Golden != nil {
		res.GoldenChecked = true
		res.GoldenMatch = bodiesEqual(first.body, c.Golden)
	}
	return res
}

func post(ctx context.Context, client *http.Client, endpoint string, body []byte) (servedPlan, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return servedPlan{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return servedPlan{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return servedPlan{}, fmt.Errorf("read body: %w", err)
	}
	return servedPlan{status: resp.StatusCode, body: bytes.TrimSpace(payload)}, nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(aj, bj)
}

func printReport(out io.Writer, results []replayResult) {
	fmt.Fprintln(out, "Plan Replay Report")
	fmt.Fprintln(out, "==================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERROR"
		case res.failed():
			status = "DIFF"
		}
		fmt.Fprintf(out, "[%s] %s (%d, %s)\n", status, res.Case.Name, res.Status, res.Duration.Round(time.Millisecond))
		if res.Err != nil {
			fmt.Fprintf(out, "  error: %v\n", res.Err)
			continue
		}
		golden := "absent"
		if res.GoldenChecked {
			golden = fmt.Sprintf("%t", res.GoldenMatch)
		}
		fmt.Fprintf(out, "  deterministic: %t | golden match: %s\n", res.Deterministic, golden)
	}
}
