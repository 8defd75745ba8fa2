//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Check mg.Namespace

// Runs the test suite with the race detector.
func (Check) Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Runs go vet and then the tests.
func (Check) All() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return fmt.Errorf("vet: %w", err)
	}
	mg.Deps(Check.Test)
	return nil
}

// Tidies go.mod.
func Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	if err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	return nil
}
