package cmd

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/store"
)

const (
	app       = "resume-ranker"
	envPrefix = "RESUME_RANKER"
)

type Config struct {
	ResumesDir  string            `mapstructure:"resumes-dir"`
	JobDir      string            `mapstructure:"job-dir"`
	JobFile     string            `mapstructure:"job-file"`
	OutputDir   string            `mapstructure:"output-dir"`
	MaxFeatures int               `mapstructure:"max-features"`
	MetricsFile string            `mapstructure:"metrics-file"`
	Database    *DatabaseConfig   `mapstructure:"database"`
	Vocabulary  *VocabularyConfig `mapstructure:"vocabulary"`
	Filters     *FiltersConfig    `mapstructure:"filters"`
	Export      *ExportConfig     `mapstructure:"export"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

type VocabularyConfig struct {
	IncludeJobTerms bool   `mapstructure:"include-job-terms"`
	SkillsFile      string `mapstructure:"skills-file"`
}

type FiltersConfig struct {
	MinExperience  int      `mapstructure:"min-experience"`
	MinScore       float64  `mapstructure:"min-score"`
	RequiredSkills []string `mapstructure:"required-skills"`
	ExcludeNames   []string `mapstructure:"exclude-names"`
	ExcludeFile    string   `mapstructure:"exclude-file"`
	Disabled       []string `mapstructure:"disabled"`
}

type ExportConfig struct {
	CSV  string `mapstructure:"csv"`
	JSON string `mapstructure:"json"`
	Top  int    `mapstructure:"top"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "resume-ranker ranks resumes against a job description by TF-IDF cosine similarity",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("db-driver", "", "database driver: sqlite or postgres")
	rootCmd.PersistentFlags().String("db-dsn", "", "database DSN (sqlite file path or postgres URL)")
	rootCmd.PersistentFlags().StringP("output-dir", "o", "", "directory for exported files")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	viper.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("db-dsn"))
	viper.BindPFlag("output-dir", rootCmd.PersistentFlags().Lookup("output-dir"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("resumes-dir", "data/resumes")
	viper.SetDefault("job-dir", "data/job_descriptions")
	viper.SetDefault("job-file", "")
	viper.SetDefault("output-dir", ranking.DefaultOutputDir)
	viper.SetDefault("max-features", 0)
	viper.SetDefault("metrics-file", "")

	viper.SetDefault("database.driver", store.DriverSQLite)
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.dsn-file", "")

	viper.SetDefault("vocabulary.include-job-terms", false)
	viper.SetDefault("vocabulary.skills-file", "")

	viper.SetDefault("filters.min-experience", 0)
	viper.SetDefault("filters.min-score", 0.0)
	viper.SetDefault("filters.required-skills", []string{})
	viper.SetDefault("filters.exclude-names", []string{})
	viper.SetDefault("filters.exclude-file", "")
	viper.SetDefault("filters.disabled", []string{})

	viper.SetDefault("export.csv", ranking.DefaultCSVName)
	viper.SetDefault("export.json", "")
	viper.SetDefault("export.top", 10)
}

func initConfig() {
	// A missing .env is fine, anything else means a broken file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it was requested explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		Result:           config,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, err
	}

	return config, nil
}
