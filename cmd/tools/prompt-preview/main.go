// cmd/tools/prompt-preview/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gt-analyzer/internal/common/config"
	"gt-analyzer/internal/models"
	"gt-analyzer/internal/prompts"
	"gt-analyzer/pkg/vocabulary"
)

const sampleText = `Interview 1:
We rolled the new tooling out to the whole team in one week and it was chaos.
People found their own workarounds, and honestly some of those stuck because
they were better than the official process.`

// prompt-preview renders the four stage prompts for a given analysis
// configuration, so prompt changes driven by config knobs can be
// inspected without running the pipeline.
func main() {
	configPath := flag.String("config", "", "path to config yaml (optional)")
	sensitivity := flag.String("sensitivity", "", "override theoretical sensitivity (low, balanced, high)")
	depth := flag.String("depth", "", "override coding depth (surface, standard, deep)")
	vocabMode := flag.String("vocabulary-mode", "", "override vocabulary mode (open, closed, hybrid)")
	minFrequency := flag.Int("min-frequency", 0, "override minimum code frequency")
	relThreshold := flag.Float64("relationship-threshold", 0, "override relationship confidence threshold")
	textPath := flag.String("text", "", "file with sample text (default: built-in snippet)")
	stageFilter := flag.String("stage", "", "render a single stage (open_coding, axial_coding, selective_coding, theory_integration)")
	flag.Parse()

	analysisCfg, vocab, err := resolveConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *sensitivity != "" {
		analysisCfg.TheoreticalSensitivity = *sensitivity
	}
	if *depth != "" {
		analysisCfg.CodingDepth = *depth
	}
	if *vocabMode != "" {
		analysisCfg.VocabularyMode = *vocabMode
	}
	if *minFrequency > 0 {
		analysisCfg.MinimumCodeFrequency = *minFrequency
	}
	if *relThreshold > 0 {
		analysisCfg.RelationshipConfidenceThreshold = *relThreshold
	}

	text := sampleText
	if *textPath != "" {
		raw, err := os.ReadFile(*textPath)
		if err != nil {
			fmt.Printf("Error reading text file: %v\n", err)
			os.Exit(1)
		}
		text = string(raw)
	}

	builder := prompts.NewBuilder(vocab)
	for _, stage := range models.Stages() {
		if *stageFilter != "" && string(stage) != *stageFilter {
			continue
		}
		fmt.Println(banner(string(stage)))
		fmt.Println(builder.Build(stage, text, analysisCfg))
		fmt.Println()
	}
}

func resolveConfig(path string) (config.AnalysisConfig, *vocabulary.Vocabulary, error) {
	if path == "" {
		// Defaults match the loader's applyDefaults values.
		return config.AnalysisConfig{
			MinimumCodeFrequency:            1,
			RelationshipConfidenceThreshold: 0.5,
			ConsolidationThreshold:          0.85,
			AutoApproveThreshold:            0.8,
			ReviewThreshold:                 0.6,
			ValidationThreshold:             0.4,
			TheoreticalSensitivity:          "balanced",
			CodingDepth:                     "standard",
			VocabularyMode:                  "hybrid",
		}, vocabulary.Default(), nil
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return config.AnalysisConfig{}, nil, err
	}

	vocab := vocabulary.Default()
	if cfg.Analysis.VocabularyPath != "" {
		vocab, err = vocabulary.LoadVocabulary(cfg.Analysis.VocabularyPath)
		if err != nil {
			return config.AnalysisConfig{}, nil, err
		}
	}
	return cfg.Analysis, vocab, nil
}

func banner(stage string) string {
	line := strings.Repeat("=", 26)
	return fmt.Sprintf("%s\n%s\n%s", line, strings.ToUpper(strings.ReplaceAll(stage, "_", " ")), line)
}
