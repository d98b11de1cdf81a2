package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Qovery/pleco-iam/pkg/common"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pleco-iam",
	Short: "Pleco IAM keeps the IAM users and password policies of an AWS organization clean",
	Long: `
Pleco IAM walks every member account of an AWS organization through the
OrganizationAccountAccessRole role.

It warns IAM users by email after 60 days without a console login, deletes
them after 90 days, and pushes the same password policy to every account.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if len(os.Args) == 1 && runningInLambda() {
		rootCmd.SetArgs([]string{lambdaCmd.Use})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pleco-iam.yaml)")
	rootCmd.PersistentFlags().String("level", "info", "set log level")
	_ = viper.BindPFlag("level", rootCmd.PersistentFlags().Lookup("level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".pleco-iam" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".pleco-iam")
	}

	common.SetDefaults(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func loadConfig(cmd *cobra.Command) common.Config {
	common.BindFlags(viper.GetViper(), cmd)
	config := common.LoadConfig(viper.GetViper())

	if err := common.CheckConfig(cmd.Name(), config); err != nil {
		logrus.Fatalf("Invalid configuration: %s", err)
	}

	return config
}

func setLogLevel(logLevel string) error {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	logrus.SetLevel(lvl)

	// use timestamp
	formatter := &logrus.TextFormatter{
		FullTimestamp: true,
	}
	logrus.SetFormatter(formatter)
	return nil
}

func runningInLambda() bool {
	_, ok := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	return ok
}
