//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the diorama binary into bin/.
func (Build) Viewer() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/diorama", "./cmd/diorama"), withStream())
	return err
}

// Installs diorama into GOBIN.
func (Build) Install() error {
	_, err := executeCmd("go", withArgs("install", "./cmd/diorama"), withStream())
	return err
}
