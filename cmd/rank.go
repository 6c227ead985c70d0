package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
	"github.com/spigell/resume-ranker/internal/engine"
	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/jobdesc"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/metrics"
	"github.com/spigell/resume-ranker/internal/pipeline"
	"github.com/spigell/resume-ranker/internal/ranking"
)

const (
	PromptYes            = "Yes, export ranking"
	PromptNo             = "No"
	PromptShowTop        = "Show top candidates"
	PromptReportBySkill  = "Report by skills"
	PromptDumpCandidates = "Dump candidates to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Export?",
	Items: []string{PromptYes, PromptNo, PromptShowTop, PromptReportBySkill, PromptDumpCandidates},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank resumes against the job description, store and export the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation, export right away")
	rankCmd.Flags().Bool("skip-ranked", false, "skip resumes already stored for a job with the same title")
	rankCmd.Flags().StringP("resumes-dir", "r", "", "directory with resumes")
	rankCmd.Flags().String("job-dir", "", "directory with the job description (first *.txt is used)")
	rankCmd.Flags().String("job-file", "", "job description file, takes precedence over --job-dir")
	rankCmd.Flags().StringP("exclude-file", "e", "", "file with resume file names to exclude, one per line")
	rankCmd.Flags().String("skills-file", "", "extra skills vocabulary, one skill per line")
	rankCmd.Flags().Bool("include-job-terms", false, "extend the skills vocabulary with job description terms")
	rankCmd.Flags().Int("min-experience", 0, "drop candidates with fewer estimated years of experience")
	rankCmd.Flags().Float64("min-score", 0, "drop candidates scoring below this similarity")
	rankCmd.Flags().String("metrics-file", "", "write run metrics in Prometheus text format to this file")

	viper.BindPFlag("resumes-dir", rankCmd.Flags().Lookup("resumes-dir"))
	viper.BindPFlag("job-dir", rankCmd.Flags().Lookup("job-dir"))
	viper.BindPFlag("job-file", rankCmd.Flags().Lookup("job-file"))
	viper.BindPFlag("filters.exclude-file", rankCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("vocabulary.skills-file", rankCmd.Flags().Lookup("skills-file"))
	viper.BindPFlag("vocabulary.include-job-terms", rankCmd.Flags().Lookup("include-job-terms"))
	viper.BindPFlag("filters.min-experience", rankCmd.Flags().Lookup("min-experience"))
	viper.BindPFlag("filters.min-score", rankCmd.Flags().Lookup("min-score"))
	viper.BindPFlag("metrics-file", rankCmd.Flags().Lookup("metrics-file"))
}

// rank is the main command for the cli. Fatal setup problems exit right away,
// an empty ranking is returned as engine.ErrNoCandidates.
func rank(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	jd, err := loadJobDescription(config)
	if err != nil {
		logger.Fatal("loading job description", zap.Error(err),
			zap.String("hint", "put a .txt file into job-dir or set job-file"))
	}

	runID := uuid.NewString()
	logger = withRun(logger, runID, jd.Title)
	logger.Info("starting the resume-ranker",
		zap.String("version", version),
		zap.String("resumes_dir", config.ResumesDir),
		zap.Strings("required_skills", jd.RequiredSkills),
	)

	st, err := openStore(ctx, config.Database, logger)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	m := metrics.New()
	deps := pipeline.Deps{Logger: logger, Metrics: m}
	if skip, _ := cmd.Flags().GetBool("skip-ranked"); skip {
		deps.History = st.History(jd.Title)
	}

	p, err := pipeline.New(pipelineConfig(config), deps)
	if err != nil {
		logger.Fatal("preparing the pipeline", zap.Error(err))
	}
	for _, status := range filtering.Describe(p.Filters()) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.String("stage", status.Stage),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	candidates, err := p.Process(ctx, config.ResumesDir, jd)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			logger.Fatal("resume directory is missing", zap.Error(err))
		}
		logger.Fatal("processing resumes", zap.Error(err))
	}

	defer writeMetrics(m, config.MetricsFile, logger)

	if candidates.Len() == 0 {
		logger.Error("nothing to rank", zap.String("resumes_dir", config.ResumesDir))
		return fmt.Errorf("ranking resumes in %q: %w", config.ResumesDir, engine.ErrNoCandidates)
	}

	jobID, records, err := st.SaveRun(ctx, jd.Title, jd.RequiredSkills, candidates.Records())
	if err != nil {
		logger.Fatal("saving the ranking", zap.Error(err))
	}
	jd.ID = jobID

	logger.Info("ranking is ready",
		zap.Int64("job_id", jobID),
		zap.Int("candidates", len(records)),
		zap.String("top_candidate", records[0].Name),
		zap.Float64("top_score", records[0].Score),
	)

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	action := PromptYes
	for {
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAction(action, logger, config, candidates, records); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, candidates *candidate.Candidates, records []candidate.Record) error {
	switch action {
	case PromptYes:
		if err := exportRecords(logger, config, records); err != nil {
			return err
		}
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptShowTop:
		ranking.WriteTable(os.Stdout, records, config.Export.Top)
		return nil
	case PromptReportBySkill:
		pretty, _ := json.MarshalIndent(candidates.ReportBySkill(), "", "  ")
		fmt.Println(string(pretty))
		return nil
	case PromptDumpCandidates:
		file, err := candidates.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dumping candidates: %w", err)
		}
		logger.Info("candidates dumped", zap.String("file", file))
		return nil
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func exportRecords(logger *zap.Logger, config *Config, records []candidate.Record) error {
	path, err := ranking.ExportCSV(config.OutputDir, config.Export.CSV, records)
	if err != nil {
		return fmt.Errorf("exporting csv: %w", err)
	}
	logger.Info("exported ranked candidates", zap.String("file", path))

	if strings.TrimSpace(config.Export.JSON) == "" {
		return nil
	}

	path, err = ranking.ExportJSON(config.OutputDir, config.Export.JSON, records)
	if err != nil {
		return fmt.Errorf("exporting json: %w", err)
	}
	logger.Info("exported ranked candidates", zap.String("file", path))
	return nil
}

func loadJobDescription(config *Config) (*jobdesc.JobDescription, error) {
	if strings.TrimSpace(config.JobFile) != "" {
		return jobdesc.Load(config.JobFile)
	}
	return jobdesc.LoadFromDir(config.JobDir)
}

func pipelineConfig(config *Config) pipeline.Config {
	cfg := pipeline.Config{MaxFeatures: config.MaxFeatures}
	if v := config.Vocabulary; v != nil {
		cfg.Vocabulary = pipeline.Vocabulary{IncludeJobTerms: v.IncludeJobTerms, SkillsFile: v.SkillsFile}
	}
	if f := config.Filters; f != nil {
		cfg.Filters = filtering.Config{
			MinExperience:  f.MinExperience,
			RequiredSkills: f.RequiredSkills,
			MinScore:       f.MinScore,
			ExcludeNames:   f.ExcludeNames,
			ExcludeFile:    f.ExcludeFile,
		}
		cfg.DisabledFilters = f.Disabled
	}
	return cfg
}

func writeMetrics(m *metrics.Metrics, path string, logger *zap.Logger) {
	m.Finish(time.Now())
	if strings.TrimSpace(path) == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		logger.Warn("writing metrics", zap.Error(err))
		return
	}
	logger.Debug("metrics written", zap.String("file", path))
}

func newLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

func withRun(l *zap.Logger, runID, jobTitle string) *zap.Logger {
	return logger.WithRunFields(l, runID, jobTitle)
}
