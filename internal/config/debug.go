package config

import "os"

func IsDebug() bool {
	return os.Getenv("VETAGENT_DEBUG") == "1"
}
