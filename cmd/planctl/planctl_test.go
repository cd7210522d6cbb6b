package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/handler"
	"github.com/noah-isme/study-planner-api/internal/service"
)

const (
	fixture            = "testdata/two_day_math.request.json"
	defaultTestTimeout = 5 * time.Second
)

func TestGenerateJSON(t *testing.T) {
	var out bytes.Buffer
	err := runGenerate(context.Background(), generateOptions{input: fixture, output: "-", format: "json"}, nil, &out)
	require.NoError(t, err)

	var plan dto.StudyPlanResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &plan))
	require.Len(t, plan.Days, 2)
	require.NotEmpty(t, plan.Days[0].Sessions)
	assert.Equal(t, "18:00", plan.Days[0].Sessions[0].StartTime)
	assert.False(t, plan.InsufficientTime)
	assert.Empty(t, plan.UnallocatedTopics)
}

func TestGenerateCSVFromStdin(t *testing.T) {
	raw, err := os.ReadFile(fixture)
	require.NoError(t, err)
	target := filepath.Join(t.TempDir(), "plan.csv")

	err = runGenerate(context.Background(), generateOptions{input: "-", output: target, format: "CSV"}, bytes.NewReader(raw), nil)
	require.NoError(t, err)

	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(written), "Date,Start,End,Subject,Topic,Type,Hours\n"))
}

func TestGenerateRejectsInvalidRequest(t *testing.T) {
	err := runGenerate(context.Background(), generateOptions{input: "-", format: "json"}, strings.NewReader(`{"subjects": []}`), &bytes.Buffer{})
	assert.Error(t, err)

	err = runGenerate(context.Background(), generateOptions{input: "-", format: "json"}, strings.NewReader(`{`), &bytes.Buffer{})
	assert.Error(t, err)
}

func planServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewStudyPlanService(nil, nil, nil, nil, zap.NewNop(), service.StudyPlanConfig{})
	r := gin.New()
	r.POST("/api/study-plan", handler.NewStudyPlanHandler(svc).Generate)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func copyFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	raw, err := os.ReadFile(fixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.Base(fixture)), raw, 0o644))
	return dir
}

func TestReplayWritesAndMatchesGolden(t *testing.T) {
	srv := planServer(t)
	dir := copyFixture(t)
	opts := replayOptions{base: srv.URL, prefix: "/api", fixtures: dir, timeout: defaultTestTimeout, update: true}

	var out bytes.Buffer
	require.NoError(t, runReplay(context.Background(), opts, &out))
	_, err := os.Stat(filepath.Join(dir, "two_day_math"+goldenSuffix))
	require.NoError(t, err)

	opts.update = false
	out.Reset()
	require.NoError(t, runReplay(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "[OK] two_day_math")
	assert.Contains(t, out.String(), "deterministic: true | golden match: true")
}

func TestReplayDetectsGoldenDrift(t *testing.T) {
	srv := planServer(t)
	dir := copyFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two_day_math"+goldenSuffix), []byte(`{"days": []}`), 0o644))

	var out bytes.Buffer
	err := runReplay(context.Background(), replayOptions{base: srv.URL, prefix: "api", fixtures: dir, timeout: defaultTestTimeout}, &out)

	require.Error(t, err)
	assert.Contains(t, out.String(), "[DIFF] two_day_math")
	assert.Contains(t, out.String(), "golden match: false")
}

func TestReplayDetectsNondeterminism(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"call": %d}`, n)
	}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	err := runReplay(context.Background(), replayOptions{base: srv.URL, prefix: "/api", fixtures: copyFixture(t), timeout: defaultTestTimeout}, &out)

	require.Error(t, err)
	assert.Contains(t, out.String(), "deterministic: false")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestReplayRequiresFixtures(t *testing.T) {
	err := runReplay(context.Background(), replayOptions{base: "http://127.0.0.1:0", fixtures: t.TempDir()}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestBodiesEqualIgnoresFormatting(t *testing.T) {
	assert.True(t, bodiesEqual([]byte(`{"a": 1, "b": [1, 2]}`), []byte(`{"b":[1,2],"a":1}`)))
	assert.False(t, bodiesEqual([]byte(`{"a": 1}`), []byte(`{"a": 2}`)))
	assert.False(t, bodiesEqual([]byte(`not json`), []byte(`{"a": 2}`)))
}

func TestRootCommandWiresSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"generate", "replay"}, names)
}
