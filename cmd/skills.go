package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/extract"
	"github.com/spigell/resume-ranker/internal/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills <file>",
	Short: "Print skills, experience and contact details found in a single resume",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		showSkills(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)

	skillsCmd.Flags().String("vocabulary", "", "skills file to merge with the built-in vocabulary")
}

func showSkills(cmd *cobra.Command, path string) {
	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	vocab := skills.Default()
	if file, _ := cmd.Flags().GetString("vocabulary"); file != "" {
		extra, err := skills.LoadFile(file)
		if err != nil {
			logger.Fatal("loading skills vocabulary", zap.Error(err))
		}
		vocab = skills.Merge(vocab, extra)
	}

	text, err := extract.New(logger).Text(path)
	if err != nil {
		logger.Fatal("extracting text", zap.String("path", path), zap.Error(err),
			zap.Strings("supported_extensions", extract.SupportedExtensions()))
	}

	contact := extract.Contact(text)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "name:       %s\n", contact.Name)
	fmt.Fprintf(out, "email:      %s\n", optional(contact.Email))
	fmt.Fprintf(out, "phone:      %s\n", optional(contact.Phone))
	fmt.Fprintf(out, "experience: %d\n", skills.EstimateExperienceYears(text))
	fmt.Fprintf(out, "skills:     %s\n", strings.Join(skills.NewMatcher(vocab).Extract(text), ", "))
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
