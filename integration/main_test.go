//go:build integration

package integration_test

import (
	"log"
	"os"
	"os/exec"
	"strings"
	"testing"
)

const binary = "tenant-resolver"

var validConfig, buildVersion string

func init() {
	// read config file
	dat, err := os.ReadFile("../config.yaml")
	if err != nil {
		panic(err)
	}
	validConfig = string(dat)

	// read build_version.json file
	dat, err = os.ReadFile("../build_version.json")
	if err != nil {
		panic(err)
	}
	buildVersion = strings.TrimSpace(string(dat))
}

func TestMain(m *testing.M) {
	cmd := exec.Command("go", "build", "-buildvcs=false", "-race", "-cover",
		"-ldflags", "-X main.BuildInfo="+buildVersion,
		"-o", binary, "../cmd/"+binary)
	if output, err := cmd.CombinedOutput(); err != nil {
		log.Printf("output: %s", output)
		log.Fatalf("error: %v", err)
	}

	code := m.Run()
	os.Remove(binary)
	os.Exit(code)
}
