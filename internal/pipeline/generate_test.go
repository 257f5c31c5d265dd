package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shortforge/internal/config"
	"shortforge/internal/media"
	"shortforge/internal/pipeline"
	"shortforge/internal/queue"
	"shortforge/internal/services"
	"shortforge/internal/services/llm"
	"shortforge/internal/stage"
	"shortforge/internal/testsupport"
)

func startGenerateJob(t *testing.T) (*config.Config, *queue.Store, *queue.Job, *stage.Reporter) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewGenerateJob(t, store, "deep sea creatures")
	testsupport.MustAdvance(t, store, job.ID, queue.StatusProcessing)
	loaded, err := store.Get(context.Background(), job.ID)
	if err != nil || loaded == nil {
		t.Fatalf("Get: %v", err)
	}
	return cfg, store, loaded, stage.NewReporter(store, loaded, nil)
}

func generateSettings(cfg *config.Config) pipeline.GenerateSettings {
	return pipeline.GenerateSettings{WorkDir: cfg.Paths.WorkDir, OutputDir: cfg.Paths.OutputDir}
}

func TestGenerateHandlerProducesVideo(t *testing.T) {
	cfg, store, job, rep := startGenerateJob(t)
	footage := &fakeFootage{count: 2}
	speech := &fakeSpeech{}
	assembler := &fakeAssembler{}
	scorer := &fakeScorer{total: 64}
	handler := pipeline.NewGenerateHandler(pipeline.GenerateDeps{
		Writer:    fakeWriter{script: llm.Script{Title: "Deep Sea", Script: "Down in the dark, life glows."}},
		Footage:   footage,
		Speech:    speech,
		Prober:    fakeProber{info: media.Info{Duration: 31.5, HasAudio: true}},
		Assembler: assembler,
		Scorer:    scorer,
	}, generateSettings(cfg), nil)

	outcome, err := handler.Run(context.Background(), job, rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := filepath.Join(cfg.Paths.OutputDir, job.ID+".mp4")
	if outcome.OutputRef != want {
		t.Fatalf("output = %q, want %q", outcome.OutputRef, want)
	}
	if outcome.Score == nil || *outcome.Score != 64 {
		t.Fatalf("unexpected score %v", outcome.Score)
	}
	if len(footage.keywords) != 1 || footage.keywords[0] != "deep sea creatures" {
		t.Fatalf("expected topic as the only keyword, got %v", footage.keywords)
	}
	if footage.limit != queue.DefaultGenerateOptions().MaxFootage {
		t.Fatalf("unexpected footage limit %d", footage.limit)
	}
	if speech.voice != queue.DefaultVoice || !strings.Contains(speech.text, "life glows") {
		t.Fatalf("unexpected narration call %+v", speech)
	}
	req := assembler.req
	if req.Duration != 31.5 || len(req.Footage) != 2 || req.SegmentSeconds != 4 {
		t.Fatalf("unexpected assemble request %+v", req)
	}
	if filepath.Base(req.Narration) != job.ID+".mp3" {
		t.Fatalf("unexpected narration path %q", req.Narration)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected output kept: %v", err)
	}
	if _, err := os.Stat(req.Narration); !os.IsNotExist(err) {
		t.Fatalf("expected narration removed with the workspace, stat err %v", err)
	}

	got, _ := store.Get(context.Background(), job.ID)
	wantLogs := []string{"Generating script...", "Fetching visuals...", "Generating audio...", "Assembling video..."}
	if strings.Join(got.Logs, "|") != strings.Join(wantLogs, "|") {
		t.Fatalf("unexpected logs %v", got.Logs)
	}
	if got.Progress != 90 {
		t.Fatalf("expected progress 90, got %d", got.Progress)
	}
}

func TestGenerateHandlerLeavesNeutralScoreUnset(t *testing.T) {
	cfg, _, job, rep := startGenerateJob(t)
	handler := pipeline.NewGenerateHandler(pipeline.GenerateDeps{
		Writer:    fakeWriter{script: llm.Script{Title: "Deep Sea", Script: "Down in the dark, life glows."}},
		Footage:   &fakeFootage{count: 1},
		Speech:    &fakeSpeech{},
		Prober:    fakeProber{info: media.Info{Duration: 12, HasAudio: true}},
		Assembler: &fakeAssembler{},
		Scorer:    &fakeScorer{total: 50, neutral: true},
	}, generateSettings(cfg), nil)

	outcome, err := handler.Run(context.Background(), job, rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Score != nil {
		t.Fatalf("expected neutral score left unset, got %v", *outcome.Score)
	}
}

func TestGenerateHandlerUsesScriptKeywords(t *testing.T) {
	cfg, _, job, rep := startGenerateJob(t)
	footage := &fakeFootage{count: 1}
	handler := pipeline.NewGenerateHandler(pipeline.GenerateDeps{
		Writer:    fakeWriter{script: llm.Script{Script: "text", Keywords: []string{"ocean", "jellyfish"}}},
		Footage:   footage,
		Speech:    &fakeSpeech{},
		Prober:    fakeProber{info: media.Info{Duration: 10}},
		Assembler: &fakeAssembler{},
	}, generateSettings(cfg), nil)

	if _, err := handler.Run(context.Background(), job, rep); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(footage.keywords, ",") != "ocean,jellyfish" {
		t.Fatalf("unexpected keywords %v", footage.keywords)
	}
}

func TestGenerateHandlerFailures(t *testing.T) {
	tests := []struct {
		name     string
		deps     pipeline.GenerateDeps
		wantErr  error
		wantText string
		wantLogs int
	}{
		{
			name:     "llm not configured",
			deps:     pipeline.GenerateDeps{Writer: fakeWriter{err: llm.ErrNotConfigured}},
			wantErr:  services.ErrConfiguration,
			wantLogs: 1,
		},
		{
			name:     "llm failure",
			deps:     pipeline.GenerateDeps{Writer: fakeWriter{err: errTool}},
			wantErr:  services.ErrExternalTool,
			wantLogs: 1,
		},
		{
			name: "no visuals",
			deps: pipeline.GenerateDeps{
				Writer:  fakeWriter{script: llm.Script{Script: "text"}},
				Footage: &fakeFootage{},
			},
			wantErr:  services.ErrNotFound,
			wantText: "no visuals found",
			wantLogs: 2,
		},
		{
			name: "assemble",
			deps: pipeline.GenerateDeps{
				Writer:    fakeWriter{script: llm.Script{Script: "text"}},
				Footage:   &fakeFootage{count: 1},
				Speech:    &fakeSpeech{},
				Prober:    fakeProber{info: media.Info{Duration: 10}},
				Assembler: &fakeAssembler{err: errTool},
			},
			wantErr:  errTool,
			wantLogs: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, store, job, rep := startGenerateJob(t)
			handler := pipeline.NewGenerateHandler(tt.deps, generateSettings(cfg), nil)
			_, err := handler.Run(context.Background(), job, rep)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantText != "" && !strings.Contains(err.Error(), tt.wantText) {
				t.Fatalf("expected %q in %q", tt.wantText, err.Error())
			}
			got, _ := store.Get(context.Background(), job.ID)
			if len(got.Logs) != tt.wantLogs {
				t.Fatalf("expected %d log lines, got %v", tt.wantLogs, got.Logs)
			}
			if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, job.ID+".mp4")); !os.IsNotExist(err) {
				t.Fatalf("expected no output left, stat err %v", err)
			}
		})
	}
}
