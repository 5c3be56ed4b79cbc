package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that provide defaults for the run command.
const (
	EnvStop        = "NETSIM_STOP"
	EnvMonitorPort = "NETSIM_MONITOR_PORT"
	EnvTraceDir    = "NETSIM_TRACE_DIR"
)

// loadEnv reads path into the environment. Variables already set win over
// the file, and a missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func envInt(name string, def int) (int, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return def, nil
	}

	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, value)
	}

	return v, nil
}

func envString(name, def string) string {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		return value
	}

	return def
}
