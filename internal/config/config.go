package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// DatabaseFile is the path to the cache SQLite database file
	DatabaseFile string
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("cache.dbfile", "./feedcache.db")

	// Get values from viper
	DatabaseFile = viper.GetString("cache.dbfile")
}

// SetDatabaseFile sets the cache database path
func SetDatabaseFile(path string) {
	DatabaseFile = path
}
