package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func loadConfigFile(cmd *cobra.Command, args []string) error {
	viper.SetConfigType("yaml")
	viper.SetConfigName(appName)

	// all possible config file paths, by priority
	viper.AddConfigPath("/etc/" + appName + "/")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	// prefer the config file path provided by cli flag, if any
	explicit := cmd.Flags().Changed("config")
	if _, err := os.Stat(cfgFile); !os.IsNotExist(err) {
		viper.SetConfigFile(cfgFile)
	} else if explicit {
		return fmt.Errorf("config file %s not found", cfgFile)
	}

	// allow config params through prefixed env variables
	viper.SetEnvPrefix("GHP")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		cmd.Printf("Using config file: %s\n", viper.ConfigFileUsed())
	case errors.As(err, &notFound):
	default:
		return fmt.Errorf("failed to read config file: %v", err)
	}

	return nil
}
