package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/planraster/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "planraster",
	Short: "Aggregate population rasters and locate coordinates in raster space",
	Long: `planraster reduces large rasters into summary statistics and maps
geographic coordinates into raster pixel space.

Rasters are read one block at a time, so bands larger than memory can be
aggregated. Any format GDAL can open is supported; ESRI ASCII grids (.asc)
are also read natively.

Examples:
  # Sum and max of the population in band 1
  planraster aggregate KEN_popmap15_v2b.tif

  # Validate an origin against a friction raster and load it
  planraster coverage -i friction.tif -g 36.82,-1.29 -m 60 -m 120 -v

  # Start HTTP server
  planraster serve --port 8080 --data-dir /srv/rasters`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.planraster.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text|json)")
	rootCmd.PersistentFlags().Int("band", 1, "1-based index of the band to read")
	rootCmd.PersistentFlags().String("driver", "auto", "raster driver (auto|gdal|ascii)")

	viper.BindPFlag("log.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("raster.band", rootCmd.PersistentFlags().Lookup("band"))
	viper.BindPFlag("raster.driver", rootCmd.PersistentFlags().Lookup("driver"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".planraster" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".planraster")
	}

	viper.SetEnvPrefix("planraster")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig returns the merged configuration and a logger writing to the
// command's stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Log.Logger(cmd.ErrOrStderr()), nil
}
