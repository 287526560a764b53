package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/logshare/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "logshare",
	Short: "Share terminal output without leaking secrets",
	Long: `Logshare classifies terminal output, strips sensitive data from it and
shares it through a logshare server with syntax highlighting and line
comments.

Everything is redacted locally before it is uploaded or sent to a model.

Examples:
  npm run build 2>&1 | logshare submit
  logshare classify build.log
  logshare redact --format json build.log
  logshare watch --upload /var/log/app.log
  logshare serve --addr :8080`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.logshare.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, yaml, table)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("color", "auto", "color redaction markers (auto, always, never)")
	rootCmd.PersistentFlags().String("endpoint", "", "logshare server URL (default http://localhost:8080)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("client.endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
}

func initConfig() {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".logshare")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LOGSHARE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("client.recent_file", config.DefaultRecentFile(home))
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
