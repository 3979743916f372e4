/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: HTML report of an induction run. Shows the run counters, the size
of the grammar and every rule with its reference count, right-hand side and
full expansion, with links between rules.
*/

package reporting

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kleascm/sequitur/pkg/formatter"
	"github.com/kleascm/sequitur/pkg/grammar"
	"github.com/kleascm/sequitur/pkg/inference"
	"github.com/sirupsen/logrus"
)

// ReportFile is the name of the generated page inside the output directory
const ReportFile = "index.html"

// maxExpansion bounds the expansion shown for a rule
const maxExpansion = 200

// ReportGenerator renders induction reports
type ReportGenerator struct {
	outputDir string
	logger    logrus.FieldLogger
	templates *template.Template
}

// ReportData contains all data for report generation
type ReportData struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generated_at"`
	Version     string          `json:"version"`
	RunID       string          `json:"run_id"`
	Input       string          `json:"input"`
	Tokenizer   string          `json:"tokenizer"`
	Duration    time.Duration   `json:"duration"`
	Stats       inference.Stats `json:"stats"`
	Symbols     int             `json:"symbols"`
	Compression float64         `json:"compression"`
	Rules       []ReportRule    `json:"rules"`
}

// ReportRule is one rule row of the report
type ReportRule struct {
	formatter.RuleEntry
	Expansion string `json:"expansion"`
	Truncated bool   `json:"truncated"`
}

// NewReportData collects the report content for a finished engine.
func NewReportData(e *inference.Engine, title string) *ReportData {
	g := e.Grammar()
	doc := formatter.Collect(g, e.RunID())
	rules := g.Rules()

	data := &ReportData{
		Title:       title,
		GeneratedAt: time.Now(),
		RunID:       e.RunID(),
		Stats:       e.Stats(),
		Symbols:     doc.Symbols,
		Rules:       make([]ReportRule, len(doc.Rules)),
	}
	if tokens := data.Stats.Tokens; tokens > 0 {
		data.Compression = float64(doc.Symbols) / float64(tokens)
	}
	for i, entry := range doc.Rules {
		data.Rules[i] = newReportRule(rules[i], entry)
	}
	return data
}

func newReportRule(r *grammar.Rule, entry formatter.RuleEntry) ReportRule {
	tokens := r.Expand()
	row := ReportRule{RuleEntry: entry}
	if len(tokens) > maxExpansion {
		tokens = tokens[:maxExpansion]
		row.Truncated = true
	}
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprint(tok)
	}
	row.Expansion = strings.Join(parts, " ")
	return row
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(outputDir string, logger logrus.FieldLogger) *ReportGenerator {
	return &ReportGenerator{
		outputDir: outputDir,
		logger:    logger,
		templates: template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// GenerateReport writes the report page and returns its path.
func (rg *ReportGenerator) GenerateReport(data *ReportData) (string, error) {
	if err := os.MkdirAll(rg.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputFile := filepath.Join(rg.outputDir, ReportFile)
	file, err := os.Create(outputFile)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := rg.templates.Execute(file, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	rg.logger.WithField("file", outputFile).Info("Report generated")
	return outputFile, nil
}
