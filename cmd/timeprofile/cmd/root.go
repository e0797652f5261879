package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	resultPath   string
	outputFormat string
	lockTimeout  time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "timeprofile",
	Short: "CLI for the timeprofile measurement log",
	Long: `timeprofile measures elapsed wall-clock time around workloads and
inspects the shared CSV result file that concurrent measurements append to.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.timeprofile/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&resultPath, "result", "", "result path without extension (default from config or ./profile)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
	rootCmd.PersistentFlags().DurationVar(&lockTimeout, "lock-timeout", 10*time.Second, "max wait for the result file lock")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".timeprofile")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.BindEnv("result_path", "TIMEPROFILE_RESULT")

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetString("result_path") != "" && resultPath == "" {
			resultPath = viper.GetString("result_path")
		}
	}

	if resultPath == "" && viper.GetString("result_path") != "" {
		resultPath = viper.GetString("result_path")
	}
	if resultPath == "" {
		resultPath = "./profile"
	}
}

// GetResultPath returns the configured result path sans extension
func GetResultPath() string {
	return resultPath
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}
