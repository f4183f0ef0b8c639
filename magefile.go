//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified.
var Default = Build

const versionVar = "github.com/hmbui/bsacore-test/pkg/version.Version"

var commands = []string{"bsacore-test", "bsacore-trace"}

// Build compiles both commands into ./bin.
func Build() error {
	mg.Deps(BuildRunner, BuildTrace)
	fmt.Println("Compilation finished")
	return nil
}

// BuildRunner compiles the test runner.
func BuildRunner() error {
	return build("bsacore-test")
}

// BuildTrace compiles the trace viewer.
func BuildTrace() error {
	return build("bsacore-trace")
}

// Test runs the unit and end-to-end tests.
func Test() error {
	return gocmd(nil, "test", "-race", "./...")
}

// Install installs both commands into GOBIN.
func Install() error {
	for _, name := range commands {
		fmt.Printf("Installing %s...\n", name)
		if err := gocmd(nil, "install", "-ldflags", ldflags(), "./cmd/"+name); err != nil {
			return err
		}
	}
	return nil
}

// Mocks regenerates pkg/pv/mocks from .mockery.yaml.
func Mocks() error {
	cmd := exec.Command("mockery")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func build(name string) error {
	fmt.Printf("Building %s executable...\n", name)
	return gocmd(nil, "build", "-ldflags", ldflags(), "-o", "./bin/"+name, "./cmd/"+name)
}

func ldflags() string {
	return fmt.Sprintf("-X %s=%s", versionVar, describe())
}

// describe returns the git version of the tree, or "dev" outside a checkout.
func describe() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(string(out))
}

func gocmd(env []string, args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
