package utils

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"regexp"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:golint,revive
)

// Run executes the provided command within this context
func Run(cmd *exec.Cmd) ([]byte, error) {
	dir, _ := GetProjectDir()
	cmd.Dir = dir

	command := strings.Join(cmd.Args, " ")
	fmt.Fprintf(GinkgoWriter, "running: %s\n", command)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s failed with error: (%v) %s", command, err, string(output))
	}

	return output, nil
}

// Start launches the provided command within this context without waiting for it.
// Its output is copied to GinkgoWriter.
func Start(cmd *exec.Cmd) error {
	dir, _ := GetProjectDir()
	cmd.Dir = dir
	cmd.Stdout = GinkgoWriter
	cmd.Stderr = GinkgoWriter

	fmt.Fprintf(GinkgoWriter, "starting: %s\n", strings.Join(cmd.Args, " "))
	return cmd.Start()
}

// GetProjectDir will return the directory where the project is
func GetProjectDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return wd, err
	}
	re := regexp.MustCompile("/test/.*")
	wd = re.ReplaceAllString(wd, "")
	return wd, nil
}

// FreeAddr returns a loopback address whose port was free at the time of the call.
func FreeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Addr().String(), nil
}
