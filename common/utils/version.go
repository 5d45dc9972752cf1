package utils

// Set at build time with -ldflags "-X github.com/snape/RVO2/common/utils.version=..."
var version = "dev"

func GetVersion() string {
	return version
}
