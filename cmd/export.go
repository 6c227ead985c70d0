package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored candidates of the latest (or given) job description",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return export(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().Int64("job-id", 0, "job description id to export (default is the latest one)")
	exportCmd.Flags().Bool("all", false, "export candidates of every job description")
	exportCmd.Flags().Bool("table", false, "also print the top candidates as a table")
}

// export writes stored candidates again. A missing job description is returned
// as store.ErrNotFound, a job without candidates as ranking.ErrNoCandidates.
func export(cmd *cobra.Command) error {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	st, err := openStore(ctx, config.Database, logger)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	jobID, _ := cmd.Flags().GetInt64("job-id")
	if all, _ := cmd.Flags().GetBool("all"); all {
		jobID = 0
	} else {
		jd, err := jobDescription(ctx, st, jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				logger.Error("nothing to export", zap.Int64("job_id", jobID), zap.Error(err))
				return err
			}
			logger.Fatal("getting the job description", zap.Error(err))
		}
		jobID = jd.ID
		logger = withRun(logger, "", jd.Title)
	}

	records, err := st.FetchCandidates(ctx, jobID)
	if err != nil {
		logger.Fatal("fetching candidates", zap.Error(err))
	}
	ranking.Sort(records)

	if table, _ := cmd.Flags().GetBool("table"); table {
		ranking.WriteTable(cmd.OutOrStdout(), records, config.Export.Top)
	}

	if err := exportRecords(logger, config, records); err != nil {
		if errors.Is(err, ranking.ErrNoCandidates) {
			logger.Error("nothing to export", zap.Int64("job_id", jobID), zap.Error(err))
			return fmt.Errorf("job %d: %w", jobID, err)
		}
		logger.Fatal("exporting", zap.Error(err))
	}

	return nil
}

// jobDescription returns the job with the given id, or the latest one for 0.
func jobDescription(ctx context.Context, st *store.Store, id int64) (*store.JobDescription, error) {
	if id == 0 {
		jd, err := st.LatestJobDescription(ctx)
		if err != nil {
			return nil, fmt.Errorf("no job descriptions stored yet: %w", err)
		}
		return jd, nil
	}

	jd, err := st.JobDescriptionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("job description %d: %w", id, err)
	}
	return jd, nil
}
