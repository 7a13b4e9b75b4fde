// Package config loads the process configuration from a JSON file via
// viper, with working defaults for every key.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Load reads configuration from sailnavsim.cfg.json in configDir and sets
// default values. A missing config file is fine; defaults apply.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("data.weatherDirF1", "wx_data_f006")
	viper.SetDefault("data.weatherDirF2", "wx_data_f009")
	viper.SetDefault("data.oceanPathT1", "ocean_data/t030.csv")
	viper.SetDefault("data.oceanPathT2", "ocean_data/t042.csv")
	viper.SetDefault("data.wavePath", "wave_data/waves.csv")
	viper.SetDefault("data.geoInfoDir", "geo_water_data")
	viper.SetDefault("data.compassPath", "compass_data/magdec.csv")

	viper.SetDefault("commands.fifoPath", "./cmds")

	viper.SetDefault("boatInit.path", "./boatinit.txt")

	viper.SetDefault("logger.csvDir", "./boatlogs")

	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("db.sqliteFile", "./sailnavsim.sql")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "sailnavsim")

	viper.SetDefault("net.workers", 5)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "sailnavsim-metrics")
	viper.SetDefault("influx.bucket", "sim_stats")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName("sailnavsim.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}
